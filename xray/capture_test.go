package xray

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tracepipe/xray-go/xray/schema"
)

func TestCapture(t *testing.T) {
	nowFunc = fixedTime
	defer func() { nowFunc = time.Now }()

	ctx, td := NewTestDaemon()
	defer td.Close()

	ctx, seg := BeginSegment(ctx, "root")
	err := Capture(ctx, "capture", func(ctx context.Context) error {
		return nil
	})
	seg.Close()
	if err != nil {
		t.Fatal(err)
	}

	got, err := td.Recv()
	if err != nil {
		t.Error(err)
	}
	want := &schema.Segment{
		Name:      "root",
		ID:        seg.id,
		TraceID:   seg.traceID,
		StartTime: 1000000000,
		EndTime:   1000000000,
		Subsegments: []*schema.Segment{
			{
				Name:      "capture",
				ID:        got.Subsegments[0].ID,
				StartTime: 1000000000,
				EndTime:   1000000000,
			},
		},
		Service: ServiceData,
		AWS:     xrayData,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCapture_Error(t *testing.T) {
	ctx, td := NewTestDaemon()
	defer td.Close()

	errTest := errors.New("some error")
	ctx, seg := BeginSegment(ctx, "root")
	err := Capture(ctx, "capture", func(ctx context.Context) error {
		return errTest
	})
	seg.Close()
	if err != errTest {
		t.Errorf("want %v, got %v", errTest, err)
	}

	got, err := td.Recv()
	if err != nil {
		t.Error(err)
	}
	if len(got.Subsegments) != 1 {
		t.Fatalf("want 1 subsegment, got %d", len(got.Subsegments))
	}
	sub := got.Subsegments[0]
	if !sub.Fault {
		t.Error("want fault, but not")
	}
	if sub.Cause == nil || len(sub.Cause.Exceptions) != 1 {
		t.Fatalf("unexpected cause: %#v", sub.Cause)
	}
	if sub.Cause.Exceptions[0].Message != "some error" {
		t.Errorf("unexpected message: %q", sub.Cause.Exceptions[0].Message)
	}
}
