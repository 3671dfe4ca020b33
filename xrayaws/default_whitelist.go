package xrayaws

import "github.com/tracepipe/xray-go/xrayaws/whitelist"

// defaultWhitelist records the request and response parameters that
// X-Ray shows on the service map for well known operations.
// It is a subset of the default whitelist that the AWS X-Ray SDKs ship.
var defaultWhitelist = &whitelist.Whitelist{
	Services: map[string]*whitelist.Service{
		"dynamodb": {
			Operations: map[string]*whitelist.Operation{
				"GetItem": {
					RequestParameters: []string{"ConsistentRead", "ProjectionExpression", "TableName"},
				},
				"PutItem": {
					RequestParameters: []string{"TableName"},
				},
				"UpdateItem": {
					RequestParameters: []string{"TableName"},
				},
				"DeleteItem": {
					RequestParameters: []string{"TableName"},
				},
				"Query": {
					RequestParameters: []string{"AttributesToGet", "ConsistentRead", "IndexName", "Limit", "ProjectionExpression", "ScanIndexForward", "Select", "TableName"},
				},
				"Scan": {
					RequestParameters:  []string{"AttributesToGet", "ConsistentRead", "IndexName", "Limit", "ProjectionExpression", "Segment", "Select", "TableName", "TotalSegments"},
					ResponseParameters: []string{"Count", "ScannedCount"},
				},
				"BatchGetItem": {
					RequestDescriptors: map[string]*whitelist.Descriptor{
						"RequestItems": {Map: true, GetKeys: true, RenameTo: "table_names"},
					},
				},
				"BatchWriteItem": {
					RequestDescriptors: map[string]*whitelist.Descriptor{
						"RequestItems": {Map: true, GetKeys: true, RenameTo: "table_names"},
					},
				},
				"ListTables": {
					RequestParameters: []string{"ExclusiveStartTableName", "Limit"},
					ResponseDescriptors: map[string]*whitelist.Descriptor{
						"TableNames": {List: true, GetCount: true, RenameTo: "table_count"},
					},
				},
				"CreateTable": {
					RequestParameters: []string{"TableName"},
				},
				"DeleteTable": {
					RequestParameters: []string{"TableName"},
				},
				"DescribeTable": {
					RequestParameters: []string{"TableName"},
				},
			},
		},
		"sqs": {
			Operations: map[string]*whitelist.Operation{
				"SendMessage": {
					RequestParameters:  []string{"DelaySeconds", "QueueUrl"},
					ResponseParameters: []string{"MessageId"},
				},
				"SendMessageBatch": {
					RequestParameters: []string{"QueueUrl"},
					RequestDescriptors: map[string]*whitelist.Descriptor{
						"Entries": {List: true, GetCount: true, RenameTo: "message_count"},
					},
				},
				"ReceiveMessage": {
					RequestParameters: []string{"MaxNumberOfMessages", "QueueUrl"},
					ResponseDescriptors: map[string]*whitelist.Descriptor{
						"Messages": {List: true, GetCount: true, RenameTo: "message_count"},
					},
				},
				"DeleteMessage": {
					RequestParameters: []string{"QueueUrl"},
				},
				"DeleteMessageBatch": {
					RequestParameters: []string{"QueueUrl"},
					RequestDescriptors: map[string]*whitelist.Descriptor{
						"Entries": {List: true, GetCount: true, RenameTo: "message_count"},
					},
				},
				"GetQueueUrl": {
					RequestParameters:  []string{"QueueName"},
					ResponseParameters: []string{"QueueUrl"},
				},
			},
		},
		"sns": {
			Operations: map[string]*whitelist.Operation{
				"Publish": {
					RequestParameters: []string{"TopicArn"},
				},
				"PublishBatch": {
					RequestParameters: []string{"TopicArn"},
					RequestDescriptors: map[string]*whitelist.Descriptor{
						"PublishBatchRequestEntries": {List: true, GetCount: true, RenameTo: "message_count"},
					},
				},
			},
		},
		"s3": {
			Operations: map[string]*whitelist.Operation{
				"GetObject": {
					RequestParameters: []string{"Bucket", "Key"},
				},
				"PutObject": {
					RequestParameters: []string{"Bucket", "Key"},
				},
				"DeleteObject": {
					RequestParameters: []string{"Bucket", "Key"},
				},
				"CopyObject": {
					RequestParameters: []string{"Bucket", "Key", "CopySource"},
				},
				"HeadObject": {
					RequestParameters: []string{"Bucket", "Key"},
				},
				"ListObjectsV2": {
					RequestParameters: []string{"Bucket", "Prefix"},
					ResponseDescriptors: map[string]*whitelist.Descriptor{
						"Contents": {List: true, GetCount: true, RenameTo: "object_count"},
					},
				},
			},
		},
		"lambda": {
			Operations: map[string]*whitelist.Operation{
				"Invoke": {
					RequestParameters:  []string{"FunctionName", "InvocationType", "LogType", "Qualifier"},
					ResponseParameters: []string{"FunctionError", "StatusCode"},
				},
				"InvokeAsync": {
					RequestParameters:  []string{"FunctionName"},
					ResponseParameters: []string{"Status"},
				},
			},
		},
	},
}
