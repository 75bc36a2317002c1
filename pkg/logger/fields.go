package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldShareID 分享 ID 字段
	FieldShareID = "shareId"

	// FieldOwnerBucket 所有者桶字段
	FieldOwnerBucket = "ownerBucket"

	// FieldBlobKey 内容对象键字段
	FieldBlobKey = "blobKey"

	// FieldShareType 快照类型字段
	FieldShareType = "shareType"

	// FieldStatus 分享状态字段
	FieldStatus = "status"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldSize 内容大小字段
	FieldSize = "size"
)
