// Package schema is a utils for generating AWS X-Ray Segment Documents.
// ref. https://docs.aws.amazon.com/xray/latest/devguide/xray-api-segmentdocuments.html
package schema

// Segment is a segment
type Segment struct {
	// Required

	// The logical name of the service that handled the request, up to 200 characters.
	// For example, your application's name or domain name.
	Name string `json:"name"`

	// ID is a 64-bit identifier for the segment,
	// unique among segments in the same trace, in 16 hexadecimal digits.
	ID string `json:"id"`

	// TraceID is a unique identifier that connects all segments and subsegments originating
	// from a single client request. Trace ID Format.
	TraceID string `json:"trace_id,omitempty"`

	// StartTime is a number that is the time the segment was created,
	// in floating point seconds in epoch time.
	StartTime float64 `json:"start_time"`

	// EndTime is a number that is the time the segment was closed.
	EndTime float64 `json:"end_time,omitempty"`

	// InProgress is a boolean, set to true instead of specifying an end_time to
	// record that a segment is started, but is not complete.
	InProgress bool `json:"in_progress,omitempty"`

	// Optional

	// Service is an object with information about your application.
	Service *Service `json:"service,omitempty"`

	// Origin is the type of AWS resource running your application.
	Origin string `json:"origin,omitempty"`

	// ParentID is a subsegment ID you specify if the request originated from
	// an instrumented application.
	ParentID string `json:"parent_id,omitempty"`

	// Type must be "subsegment" if the segment was sent as
	// an independent subsegment.
	Type string `json:"type,omitempty"`

	// Namespace is "aws" for AWS SDK calls, "remote" for other downstream calls.
	Namespace string `json:"namespace,omitempty"`

	// HTTP is an http object with information about the original HTTP request.
	HTTP *HTTP `json:"http,omitempty"`

	// AWS is an aws object with information about the AWS resource on
	// which your application served the request.
	AWS AWS `json:"aws,omitempty"`

	// Error indicates that a client error occurred
	// (response status code was 4XX Client Error).
	Error bool `json:"error,omitempty"`

	// Throttle indicates that a request was throttled
	// (response status code was 429 Too Many Requests).
	Throttle bool `json:"throttle,omitempty"`

	// Fault indicates that a server error occurred
	// (response status code was 5XX Server Error).
	Fault bool `json:"fault,omitempty"`

	// Cause is the cause of the error.
	Cause *Cause `json:"cause,omitempty"`

	// Annotations is an annotations object with key-value pairs
	// that you want X-Ray to index for search.
	Annotations map[string]interface{} `json:"annotations,omitempty"`

	// Metadata is a metadata object with any additional data
	// that you want to store in the segment.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Subsegments is the array of the child segments.
	Subsegments []*Segment `json:"subsegments,omitempty"`
}

// HTTP is information about an HTTP request and its response.
type HTTP struct {
	Request  *HTTPRequest  `json:"request,omitempty"`
	Response *HTTPResponse `json:"response,omitempty"`
}

// HTTPRequest is information about an HTTP request.
type HTTPRequest struct {
	// Method is the request method. For example, GET.
	Method string `json:"method,omitempty"`

	// URL is the full URL of the request, compiled from the protocol,
	// hostname, and path of the request.
	URL string `json:"url,omitempty"`

	// UserAgent is the user agent string from the requester's client.
	UserAgent string `json:"user_agent,omitempty"`

	// ClientIP is the IP address of the requester.
	ClientIP string `json:"client_ip,omitempty"`

	// XForwardedFor indicates that the client_ip was read from
	// an X-Forwarded-For header and is not reliable as it could
	// have been forged. (segments only)
	XForwardedFor bool `json:"x_forwarded_for,omitempty"`

	// Traced indicates that the downstream call is to
	// another traced service. (subsegments only)
	Traced bool `json:"traced,omitempty"`
}

// HTTPResponse is information about an HTTP response.
type HTTPResponse struct {
	// Status is the http status of the response.
	Status int `json:"status,omitempty"`

	// ContentLength is the length of the response body in bytes.
	ContentLength int64 `json:"content_length,omitempty"`
}

// Cause is the cause of an error.
type Cause struct {
	// WorkingDirectory is the full path of the working directory
	// when the exception occurred.
	WorkingDirectory string `json:"working_directory,omitempty"`

	// Paths is the array of paths to libraries or modules in use
	// when the exception occurred.
	Paths []string `json:"paths,omitempty"`

	// Exceptions is the array of exception objects.
	Exceptions []Exception `json:"exceptions,omitempty"`
}

// Exception is detailed information about an error.
type Exception struct {
	// ID is a 64-bit identifier for the exception,
	// unique among segments in the same trace, in 16 hexadecimal digits.
	ID string `json:"id"`

	// Message is the exception message.
	Message string `json:"message,omitempty"`

	// Type is the exception type.
	Type string `json:"type,omitempty"`

	// Remote indicates that the exception was caused by an error
	// returned by a downstream service.
	Remote bool `json:"remote,omitempty"`

	// Truncated is the number of stack frames omitted from the stack.
	Truncated int `json:"truncated,omitempty"`

	// Skipped is the number of exceptions skipped between this exception
	// and its child.
	Skipped int `json:"skipped,omitempty"`

	// Cause is the exception ID of the exception's parent, that is,
	// the exception that caused this exception.
	Cause string `json:"cause,omitempty"`

	// Stack is the array of stackFrame objects.
	Stack []StackFrame `json:"stack,omitempty"`
}

// StackFrame is an item of stack traces.
type StackFrame struct {
	// Path is the relative path to the file.
	Path string `json:"path,omitempty"`

	// Line is the line in the file.
	Line int `json:"line,omitempty"`

	// Label is the function or method name.
	Label string `json:"label,omitempty"`
}

// Service is information about your application.
type Service struct {
	// Version is a string that identifies the version of your application
	// that served the request.
	Version string `json:"version,omitempty"`

	// Compiler is the compiler that built the running program.
	Compiler string `json:"compiler,omitempty"`

	// CompilerVersion is the version of the compiler.
	CompilerVersion string `json:"compiler_version,omitempty"`
}

// The types of AWS resource that can serve a request.
const (
	OriginEC2Instance      = "AWS::EC2::Instance"
	OriginECSContainer     = "AWS::ECS::Container"
	OriginElasticBeanstalk = "AWS::ElasticBeanstalk::Environment"
)

// AWS is information about the AWS resource on which your application served
// the request, or about the downstream AWS operation that a subsegment calls.
type AWS map[string]interface{}

// Set sets the key to the value.
func (aws AWS) Set(key string, value interface{}) {
	aws[key] = value
}

// Get returns the value associated with the key.
func (aws AWS) Get(key string) interface{} {
	return aws[key]
}

// SetXRay sets the information about the X-Ray SDK.
func (aws AWS) SetXRay(xray *XRay) {
	aws.Set("xray", xray)
}

// SetECS sets the information about the Amazon ECS container.
func (aws AWS) SetECS(ecs *ECS) {
	aws.Set("ecs", ecs)
}

// ECS is information about an Amazon ECS container.
type ECS struct {
	// Container is the hostname of the container.
	Container string `json:"container,omitempty"`

	// ContainerID is the full ID of the container.
	ContainerID string `json:"container_id,omitempty"`
}

// XRay is information about the X-Ray SDK that recorded the segment.
type XRay struct {
	// SDKVersion is the version of the SDK.
	SDKVersion string `json:"sdk_version,omitempty"`

	// SDK is the name of the SDK.
	SDK string `json:"sdk,omitempty"`
}
