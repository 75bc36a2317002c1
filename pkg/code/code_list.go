package code

// 通用状态码
var (
	Success = NewSuss(0, lang{
		en:    "Success",
		zh_cn: "成功",
	})
	Failed = NewError(1, lang{
		en:    "Failed",
		zh_cn: "失败",
	})
)

// 基础服务错误码 100xx
var (
	ErrorInvalidParams = NewError(10001, lang{
		en:    "Invalid request parameters",
		zh_cn: "请求参数错误",
	})
	ErrorNotFoundAPI = NewError(10002, lang{
		en:    "API not found",
		zh_cn: "接口不存在",
	})
	ErrorTooManyRequests = NewError(10003, lang{
		en:    "Too many requests",
		zh_cn: "请求过多",
	})
	ErrorServerInternal = NewError(10004, lang{
		en:    "Server internal error",
		zh_cn: "服务内部错误",
	})
	ErrorStoreUnavailable = NewError(10005, lang{
		en:    "Object store unavailable",
		zh_cn: "对象存储服务不可用",
	})
	ErrorInvalidStorageType = NewError(10006, lang{
		en:    "Invalid storage type",
		zh_cn: "无效的存储类型",
	})
)

// 认证与授权错误码 200xx
var (
	ErrorNotUserAuthToken = NewError(20001, lang{
		en:    "Missing auth token",
		zh_cn: "缺少认证 Token",
	})
	ErrorInvalidUserAuthToken = NewError(20002, lang{
		en:    "Invalid auth token",
		zh_cn: "认证 Token 无效",
	})
	ErrorShareForbidden = NewError(20003, lang{
		en:    "Not the owner of this share",
		zh_cn: "无权操作该分享",
	})
)

// 分享业务错误码 300xx
var (
	// ErrorShareNotFound 对公开调用方而言，不存在、已撤销、已过期的分享一律返回此码
	ErrorShareNotFound = NewError(30001, lang{
		en:    "Share not found",
		zh_cn: "分享不存在",
	})
	ErrorShareValidation = NewError(30002, lang{
		en:    "Snapshot payload does not match its declared kind",
		zh_cn: "快照内容与声明的类型不匹配",
	})
	ErrorShareBlobTooLarge = NewError(30003, lang{
		en:    "Snapshot payload exceeds size limit",
		zh_cn: "快照内容超过大小限制",
	})
	ErrorShareCorrupt = NewError(30004, lang{
		en:    "Stored share data is corrupt",
		zh_cn: "分享存储数据已损坏",
	})
	ErrorShareIDConflict = NewError(30005, lang{
		en:    "Share id already exists",
		zh_cn: "分享 ID 已存在",
	})
)
