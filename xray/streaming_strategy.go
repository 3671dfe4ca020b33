package xray

import (
	"github.com/tracepipe/xray-go/xray/schema"
)

// StreamingStrategy provides an interface for implementing streaming strategies.
type StreamingStrategy interface {
	StreamSegment(seg *Segment) []*schema.Segment
}

type streamingStrategyBatchAll struct{}

// NewStreamingStrategyBatchAll returns a streaming strategy that waits for
// the root segment to be closed, and then streams the whole segment tree
// as one document.
func NewStreamingStrategyBatchAll() StreamingStrategy {
	return &streamingStrategyBatchAll{}
}

func (s *streamingStrategyBatchAll) StreamSegment(seg *Segment) []*schema.Segment {
	if !seg.isRoot() {
		return nil
	}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	return []*schema.Segment{serialize(seg)}
}

func serialize(seg *Segment) *schema.Segment {
	originTime := seg.root.startTime
	originEpoch := float64(originTime.Unix()) + float64(originTime.Nanosecond())/1e9
	ret := &schema.Segment{
		Name:      seg.name,
		ID:        seg.id,
		StartTime: originEpoch + seg.startTime.Sub(originTime).Seconds(),

		Error:    seg.error,
		Throttle: seg.throttle,
		Fault:    seg.fault,
		Cause:    seg.cause,

		Namespace:   seg.namespace,
		Annotations: seg.annotations,
		Metadata:    serializeMetadata(seg.metadata),
		HTTP:        seg.http,
		AWS:         seg.aws,
	}

	if seg.inProgress() {
		ret.InProgress = true
	} else {
		seg.status = segmentStatusEmitted
		seg.root.emittedSegments++

		// use monotonic clock instead of wall clock to get correct proccessing time.
		// https://golang.org/pkg/time/#hdr-Monotonic_Clocks
		ret.EndTime = originEpoch + seg.endTime.Sub(originTime).Seconds()
	}
	if seg.isRoot() {
		ret.TraceID = seg.traceID
		ret.Service = ServiceData
		if parentID := seg.traceHeader.ParentID; parentID != "" {
			// the parent is on upstream
			ret.ParentID = parentID
			ret.Type = "subsegment"
		}
	}

	for _, sub := range seg.subsegments {
		if sub.status == segmentStatusEmitted {
			continue
		}
		sub.mu.Lock()
		ret.Subsegments = append(ret.Subsegments, serialize(sub))
		sub.mu.Unlock()
	}

	return ret
}

func serializeMetadata(metadata map[string]map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	ret := make(map[string]interface{}, len(metadata))
	for namespace, values := range metadata {
		ret[namespace] = values
	}
	return ret
}

// serializeIndependentSubsegment serializes the segment as an independent
// subsegment document that references its trace and parent by ID.
func serializeIndependentSubsegment(seg *Segment) *schema.Segment {
	ret := serialize(seg)
	ret.TraceID = seg.root.traceID
	ret.Type = "subsegment"
	if seg.parent != nil {
		ret.ParentID = seg.parent.id
	}
	return ret
}

type streamingStrategyLimitSubsegment struct {
	limit int
}

// NewStreamingStrategyLimitSubsegment returns a streaming strategy that
// streams completed subsegments as independent documents when the number
// of the completed subsegments exceeds the limit.
func NewStreamingStrategyLimitSubsegment(limit int) StreamingStrategy {
	if limit < 0 {
		panic("xray: limit should not be negative")
	}
	return &streamingStrategyLimitSubsegment{
		// the root segment is counted, too
		limit: limit + 1,
	}
}

func (s *streamingStrategyLimitSubsegment) StreamSegment(seg *Segment) []*schema.Segment {
	root := seg.root
	root.mu.Lock()
	defer root.mu.Unlock()

	if root.inProgress() {
		if root.totalSegments-root.emittedSegments <= s.limit {
			return nil
		}
		ctx := &streamingStrategyLimitSubsegmentContext{}
		ctx.streamCompleted(root)
		return ctx.result
	}
	return []*schema.Segment{serialize(root)}
}

type streamingStrategyLimitSubsegmentContext struct {
	result []*schema.Segment
}

// streamCompleted streams the completed subsegments of seg as
// independent documents.
func (ctx *streamingStrategyLimitSubsegmentContext) streamCompleted(seg *Segment) {
	for _, sub := range seg.subsegments {
		if sub.status == segmentStatusEmitted {
			continue
		}
		sub.mu.Lock()
		completed := !sub.inProgress() && ctx.allClosed(sub)
		sub.mu.Unlock()
		if completed {
			sub.mu.Lock()
			ctx.result = append(ctx.result, serializeIndependentSubsegment(sub))
			sub.mu.Unlock()
			continue
		}
		ctx.streamCompleted(sub)
	}
}

func (ctx *streamingStrategyLimitSubsegmentContext) allClosed(seg *Segment) bool {
	if seg.inProgress() {
		return false
	}
	for _, sub := range seg.subsegments {
		if sub.status == segmentStatusEmitted {
			continue
		}
		if !ctx.allClosed(sub) {
			return false
		}
	}
	return true
}
