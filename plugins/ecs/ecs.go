// Package ecs provides a plugin that reports the Amazon ECS container
// that the application runs on.
package ecs

import (
	"bufio"
	"os"
	"strings"

	"github.com/tracepipe/xray-go/xray"
	"github.com/tracepipe/xray-go/xray/schema"
)

// the cgroup of a container includes the container id.
const cgroupPath = "/proc/self/cgroup"

type plugin struct {
	ECS *schema.ECS
}

// Init activates the ECS plugin at runtime.
func Init() {
	uri := os.Getenv("ECS_CONTAINER_METADATA_URI")
	if !strings.HasPrefix(uri, "http://") {
		return
	}
	hostname, err := os.Hostname()
	if err != nil {
		return
	}
	xray.AddPlugin(&plugin{
		ECS: &schema.ECS{
			Container:   hostname,
			ContainerID: containerID(cgroupPath),
		},
	})
}

func containerID(cgroup string) string {
	f, err := os.Open(cgroup)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return ""
	}
	line := scanner.Text()
	if len(line) < 64 {
		return ""
	}
	return line[len(line)-64:]
}

// HandleSegment implements [xray.Plugin].
func (p *plugin) HandleSegment(seg *xray.Segment, doc *schema.Segment) {
	if doc.AWS == nil {
		doc.AWS = schema.AWS{}
	}
	doc.AWS.SetECS(p.ECS)
}

// Origin implements [xray.Plugin].
func (*plugin) Origin() string { return schema.OriginECSContainer }
