package consts

const (
	ChatRateKey     = "chat:rate:"
	ProductListKey  = "product:list"
	ProductInfoKey  = "product:info:"
	MediaTempKey    = "media:temp"
	TokenRevokedKey = "token:revoked:"
)
