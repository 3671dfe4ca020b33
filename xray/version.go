package xray

// Version records the current version of the SDK.
const Version = "1.2.0"

// Name is the name of the SDK, recorded into the aws.xray section
// of emitted segment documents.
const Name = "xray-go"
