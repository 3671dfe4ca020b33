package xray

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/tracepipe/xray-go/xray/schema"
	"github.com/tracepipe/xray-go/xray/xraylog"
)

var nowFunc func() time.Time = time.Now

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string { return "xray context value " + k.name }

var (
	segmentContextKey = &contextKey{"segment"}
	clientContextKey  = &contextKey{"client"}
)

type segmentStatus int

const (
	segmentStatusInit segmentStatus = iota
	segmentStatusEmitted
)

// Segment is a timed, named unit of work within a trace.
type Segment struct {
	mu        sync.RWMutex
	ctx       context.Context
	name      string
	id        string
	traceID   string
	startTime time.Time
	endTime   time.Time
	status    segmentStatus

	// sampled reports whether the segment will be sent to the X-Ray daemon.
	// Not sampled segments still propagate the trace header, with Sampled=0.
	sampled bool

	// noop marks a placeholder segment handed out while the SDK is disabled.
	// No-op segments are never emitted and never propagate the trace header.
	noop bool

	// the trace header that the segment is created from.
	// it is valid only on the root.
	traceHeader TraceHeader

	// parent segment
	// if the segment is the root, the parent is nil.
	parent *Segment

	// root segment
	// if the segment is the root, the root points the segment it self.
	root *Segment

	// subsegments of the segment.
	subsegments []*Segment

	// statics of the subsegments, used in the root.
	totalSegments   int
	closedSegments  int
	emittedSegments int

	// error information
	error    bool
	throttle bool
	fault    bool
	cause    *schema.Cause

	namespace   string
	annotations map[string]interface{}
	metadata    map[string]map[string]interface{}
	http        *schema.HTTP
	aws         schema.AWS
}

// NewTraceID generates a string format of random trace ID.
func NewTraceID() string {
	var r [12]byte
	_, err := rand.Read(r[:])
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("1-%08x-%x", nowFunc().Unix(), r)
}

// NewSegmentID generates a string format of segment ID.
func NewSegmentID() string {
	var r [8]byte
	_, err := rand.Read(r[:])
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", r)
}

// ContextSegment return the segment of current context.
// It returns nil if the context has no segment.
func ContextSegment(ctx context.Context) *Segment {
	seg, _ := ctx.Value(segmentContextKey).(*Segment)
	return seg
}

// ContextTraceID returns the trace ID of the current context.
// It returns the empty string if the context has no segment.
func ContextTraceID(ctx context.Context) string {
	seg := ContextSegment(ctx)
	if seg == nil || seg.noop {
		return ""
	}
	return seg.root.traceID
}

// WithSegment returns a new context with the existing segment.
func WithSegment(ctx context.Context, seg *Segment) context.Context {
	return context.WithValue(ctx, segmentContextKey, seg)
}

// ContextMissing reports a missing segment context to the context missing
// strategy of the client associated with ctx.
func ContextMissing(ctx context.Context, v any) {
	contextClient(ctx).contextMissing(ctx, v)
}

// BeginSegment creates a new Segment for a given name and context.
//
// Caller should close the segment when the work is done.
func BeginSegment(ctx context.Context, name string) (context.Context, *Segment) {
	now := nowFunc()
	seg := &Segment{
		ctx:           ctx,
		name:          sanitizeSegmentName(name),
		id:            NewSegmentID(),
		traceID:       NewTraceID(),
		startTime:     now,
		sampled:       true,
		noop:          contextClient(ctx).disabled,
		totalSegments: 1,
	}
	seg.root = seg
	ctx = context.WithValue(ctx, segmentContextKey, seg)
	return ctx, seg
}

// NewSegmentFromHeader creates a new Segment that continues the trace
// described by an incoming trace header.
//
// Caller should close the segment when the work is done.
func NewSegmentFromHeader(ctx context.Context, name string, r *http.Request, h TraceHeader) (context.Context, *Segment) {
	now := nowFunc()
	traceID := h.TraceID
	if traceID == "" {
		traceID = NewTraceID()
	}
	seg := &Segment{
		ctx:           ctx,
		name:          sanitizeSegmentName(name),
		id:            NewSegmentID(),
		traceID:       traceID,
		startTime:     now,
		sampled:       h.SamplingDecision != SamplingDecisionNotSampled,
		noop:          contextClient(ctx).disabled,
		traceHeader:   h,
		totalSegments: 1,
	}
	seg.root = seg
	ctx = context.WithValue(ctx, segmentContextKey, seg)
	return ctx, seg
}

// BeginSubsegment creates a new Segment that is a child of the segment of
// the context.
//
// Caller should close the segment when the work is done.
func BeginSubsegment(ctx context.Context, name string) (context.Context, *Segment) {
	return beginSubsegment(ctx, nowFunc(), name, false)
}

// BeginSubsegmentAt creates a new Segment that is a child of the segment of
// the context, with an explicit start time.
//
// Caller should close the segment when the work is done.
func BeginSubsegmentAt(ctx context.Context, at time.Time, name string) (context.Context, *Segment) {
	return beginSubsegment(ctx, at, name, false)
}

// BeginSubsegmentWithoutSampling creates a new Segment that is a child of
// the segment of the context, and that will not be sent to the X-Ray daemon.
// The trace header is still propagated downstream, with Sampled=0.
//
// Caller should close the segment when the work is done.
func BeginSubsegmentWithoutSampling(ctx context.Context, name string) (context.Context, *Segment) {
	return beginSubsegment(ctx, nowFunc(), name, true)
}

func beginSubsegment(ctx context.Context, now time.Time, name string, withoutSampling bool) (context.Context, *Segment) {
	parent := ContextSegment(ctx)
	if parent == nil {
		ContextMissing(ctx, fmt.Sprintf("failed to begin subsegment named %q: segment cannot be found", name))
		return ctx, nil
	}
	root := parent.root
	seg := &Segment{
		ctx:       ctx,
		name:      sanitizeSegmentName(name),
		id:        NewSegmentID(),
		parent:    parent,
		root:      root,
		traceID:   root.traceID,
		startTime: now,
		sampled:   parent.sampled && !withoutSampling,
		noop:      parent.noop,
	}
	ctx = context.WithValue(ctx, segmentContextKey, seg)

	root.mu.Lock()
	defer root.mu.Unlock()
	if parent != root {
		parent.mu.Lock()
		defer parent.mu.Unlock()
	}
	root.totalSegments++
	parent.subsegments = append(parent.subsegments, seg)

	return ctx, seg
}

// the X-Ray daemon accepts segment names of up to 200 characters
// from a restricted character set.
func sanitizeSegmentName(name string) string {
	var sb strings.Builder
	count := 0
	for _, r := range name {
		if unicode.In(r, unicode.L, unicode.N, unicode.Z) || strings.ContainsRune(`_.:/%&#=+\-@`, r) {
			sb.WriteRune(r)
			count++
			if count >= 200 {
				break
			}
		}
	}
	if sb.Len() == 0 {
		return "default"
	}
	return sb.String()
}

// Sampled reports whether the segment will be sent to the X-Ray daemon.
func (seg *Segment) Sampled() bool {
	if seg == nil {
		return false
	}
	seg.mu.RLock()
	defer seg.mu.RUnlock()
	return seg.sampled
}

// Noop reports whether the segment is a no-op placeholder handed out
// while the SDK is disabled.
func (seg *Segment) Noop() bool {
	if seg == nil {
		return true
	}
	return seg.noop
}

type errorPanic struct {
	err interface{}
}

func (err *errorPanic) Error() string {
	return fmt.Sprintf("%T: %v", err.err, err.err)
}

// Close closes the segment. It is a terminal operation: a segment is closed
// at most once, and later error recording has no effect on the emitted data.
func (seg *Segment) Close() {
	if seg == nil {
		return
	}
	if seg.parent != nil {
		xraylog.Debugf(seg.ctx, "Closing subsegment named %s", seg.name)
	} else {
		xraylog.Debugf(seg.ctx, "Closing segment named %s", seg.name)
	}
	err := recover()
	if err != nil {
		seg.AddError(&errorPanic{err: err})
	}
	seg.close()
	seg.emit()
	if err != nil {
		panic(err)
	}
}

func (seg *Segment) close() {
	root := seg.root
	root.mu.Lock()
	defer root.mu.Unlock()
	if seg != root {
		seg.mu.Lock()
		defer seg.mu.Unlock()
	}
	if seg.endTime.IsZero() {
		root.closedSegments++
		seg.endTime = nowFunc()
	}
}

func (seg *Segment) isRoot() bool {
	return seg.parent == nil
}

func (seg *Segment) inProgress() bool {
	return seg.endTime.IsZero()
}

func (seg *Segment) emit() {
	if seg.noop || !seg.root.sampled {
		return
	}
	contextClient(seg.ctx).Emit(seg.ctx, seg)
}

func newExceptionID() string {
	var r [8]byte
	_, err := rand.Read(r[:])
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", r)
}

// AddError sets error.
func (seg *Segment) AddError(err error) bool {
	if seg == nil || err == nil {
		return err != nil
	}
	seg.addException(err, false)
	return true
}

// AddRemoteError records an error that was caused by the downstream service,
// e.g. the connection broke after the response status was already received.
func (seg *Segment) AddRemoteError(err error) bool {
	if seg == nil || err == nil {
		return err != nil
	}
	seg.addException(err, true)
	return true
}

func (seg *Segment) addException(err error, remote bool) {
	seg.mu.Lock()
	defer seg.mu.Unlock()

	seg.fault = true
	if seg.cause == nil {
		seg.cause = &schema.Cause{}
	}
	seg.cause.WorkingDirectory, _ = os.Getwd()
	seg.cause.Exceptions = append(seg.cause.Exceptions, schema.Exception{
		ID:      newExceptionID(),
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Remote:  remote,
	})
}

// AddError sets the segment of the current context an error.
func AddError(ctx context.Context, err error) bool {
	return ContextSegment(ctx).AddError(err)
}

// SetError sets the error flag of the segment.
// It indicates that a client error occurred, such as a 4XX response status.
func (seg *Segment) SetError() {
	if seg == nil {
		return
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	seg.error = true
}

// SetThrottle sets the throttle flag of the segment.
// It indicates that the downstream service throttled the request.
func (seg *Segment) SetThrottle() {
	if seg == nil {
		return
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	seg.throttle = true
}

// SetFault sets the fault flag of the segment.
// It indicates that a server error occurred, such as a 5XX response status.
func (seg *Segment) SetFault() {
	if seg == nil {
		return
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	seg.fault = true
}

// SetNamespace sets namespace
func (seg *Segment) SetNamespace(namespace string) {
	if seg == nil {
		return
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	seg.namespace = namespace
}

// SetHTTPRequest sets the information of the HTTP request.
func (seg *Segment) SetHTTPRequest(request *schema.HTTPRequest) {
	if seg == nil {
		return
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if seg.http == nil {
		seg.http = &schema.HTTP{}
	}
	seg.http.Request = request
}

// SetHTTPResponse sets the information of the HTTP response.
func (seg *Segment) SetHTTPResponse(response *schema.HTTPResponse) {
	if seg == nil {
		return
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if seg.http == nil {
		seg.http = &schema.HTTP{}
	}
	seg.http.Response = response
}

// HasHTTPResponse reports whether the information of the HTTP response
// is already recorded on the segment.
func (seg *Segment) HasHTTPResponse() bool {
	if seg == nil {
		return false
	}
	seg.mu.RLock()
	defer seg.mu.RUnlock()
	return seg.http != nil && seg.http.Response != nil
}

// SetAWS sets the information about the AWS operation the segment calls.
func (seg *Segment) SetAWS(aws schema.AWS) {
	if seg == nil {
		return
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if seg.aws == nil {
		seg.aws = schema.AWS{}
	}
	for key, value := range aws {
		seg.aws.Set(key, value)
	}
}

// AddAnnotation adds an annotation that is indexed for search by X-Ray.
func (seg *Segment) AddAnnotation(key string, value interface{}) {
	if seg == nil {
		return
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if seg.annotations == nil {
		seg.annotations = map[string]interface{}{}
	}
	seg.annotations[key] = value
}

// AddMetadata adds metadata into the "default" namespace.
func (seg *Segment) AddMetadata(key string, value interface{}) {
	seg.AddMetadataToNamespace("default", key, value)
}

// AddMetadataToNamespace adds metadata into the given namespace.
func (seg *Segment) AddMetadataToNamespace(namespace, key string, value interface{}) {
	if seg == nil {
		return
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if seg.metadata == nil {
		seg.metadata = map[string]map[string]interface{}{}
	}
	if seg.metadata[namespace] == nil {
		seg.metadata[namespace] = map[string]interface{}{}
	}
	seg.metadata[namespace][key] = value
}

// AddMetadata adds metadata to the segment of the current context.
func AddMetadata(ctx context.Context, key string, value interface{}) {
	ContextSegment(ctx).AddMetadata(key, value)
}
