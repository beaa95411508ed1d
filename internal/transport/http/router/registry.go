package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// APIModule / AdminModule 模块实现其中一个或两个接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 实现该接口可控制挂载顺序（数值越小越先挂），不实现默认 100
type prioritizer interface{ Priority() int }

var (
	mu        sync.RWMutex
	apiMods   []APIModule
	adminMods []AdminModule
)

// Register 进程级注册入口，留给外部扩展模块用
func Register(mod any) {
	mu.Lock()
	defer mu.Unlock()
	if m, ok := mod.(APIModule); ok {
		apiMods = append(apiMods, m)
	}
	if m, ok := mod.(AdminModule); ok {
		adminMods = append(adminMods, m)
	}
}

// MountAPI 按优先级挂载传入模块 + 进程级注册过的模块
func MountAPI(api *gin.RouterGroup, mods ...APIModule) {
	mu.RLock()
	all := append(append([]APIModule(nil), mods...), apiMods...)
	mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return priorityOf(all[i]) < priorityOf(all[j])
	})
	for _, m := range all {
		m.MountAPI(api)
	}
}

func MountAdmin(admin *gin.RouterGroup, mods ...AdminModule) {
	mu.RLock()
	all := append(append([]AdminModule(nil), mods...), adminMods...)
	mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return priorityOf(all[i]) < priorityOf(all[j])
	})
	for _, m := range all {
		m.MountAdmin(admin)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
