package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyEmail         = "email"
	KeyConfig        = "config"
	KeyRequestBody   = "requestBody"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyHeader        = "header"
	KeyDbURL         = "dbURL"
	KeyProduct       = "product"
	KeyProducts      = "products"
	KeyProductID     = "productId"
	KeySlug          = "slug"
	KeyIdentifier    = "identifier"
	KeyCacheKey      = "cacheKey"
	KeyRateKey       = "rateKey"
	KeyQuery         = "query"
)
