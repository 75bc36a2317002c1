package global

// TracerConfig 请求追踪配置快照，由启动流程写入
type TracerConfig struct {
	Enabled bool
	Header  string
}

// RuntimeConfig 运行期共享的配置子集
// 只承载中间件需要的跨层字段，完整配置仍由 App Container 持有
type RuntimeConfig struct {
	Tracer TracerConfig
}

// Config 当前运行期配置，nil 表示尚未初始化
var Config *RuntimeConfig
