package whitelist

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRead(t *testing.T) {
	input := `{
	"services": {
		"dynamodb": {
			"operations": {
				"BatchGetItem": {
					"request_descriptors": {
						"RequestItems": {
							"map": true,
							"get_keys": true,
							"rename_to": "table_names"
						}
					},
					"response_parameters": ["ConsumedCapacity"]
				},
				"Scan": {
					"request_parameters": ["TableName"],
					"response_parameters": ["Count", "ScannedCount"]
				}
			}
		}
	}
}`
	got, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	want := &Whitelist{
		Services: map[string]*Service{
			"dynamodb": {
				Operations: map[string]*Operation{
					"BatchGetItem": {
						RequestDescriptors: map[string]*Descriptor{
							"RequestItems": {
								Map:      true,
								GetKeys:  true,
								RenameTo: "table_names",
							},
						},
						ResponseParameters: []string{"ConsumedCapacity"},
					},
					"Scan": {
						RequestParameters:  []string{"TableName"},
						ResponseParameters: []string{"Count", "ScannedCount"},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFile_NotFound(t *testing.T) {
	if _, err := ReadFile("testdata/no-such-file.json"); err == nil {
		t.Error("want error, got nil")
	}
}
