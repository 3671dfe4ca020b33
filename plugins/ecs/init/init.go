// Package init installs the ECS plugin at init time.
// To enable this plugin, import the ecs/init package.
//
//	import _ "github.com/tracepipe/xray-go/plugins/ecs/init"
//
// or if you want to load conditionally at runtime, use the Init function.
//
//	import "github.com/tracepipe/xray-go/plugins/ecs"
//	ecs.Init()
package init

import "github.com/tracepipe/xray-go/plugins/ecs"

func init() {
	ecs.Init()
}
