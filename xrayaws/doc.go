// Package xrayaws provides X-Ray tracing for AWS SDK for Go v2.
//
//	cfg, err := config.LoadDefaultConfig(ctx, xrayaws.WithXRay())
//	if err != nil {
//		panic(err)
//	}
//	svc := dynamodb.NewFromConfig(cfg)
//
//	// the following requests are traced.
//	svc.ListTables(ctx, &dynamodb.ListTablesInput{})
package xrayaws
