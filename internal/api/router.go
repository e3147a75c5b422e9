package api

import (
	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handle) *gin.Engine {
	r := gin.Default()

	r.GET("/api/meta", MetaListHandler(h))
	r.GET("/api/meta/:entity", MetaEntityHandler(h))

	apiGroup := r.Group("/api")
	{
		// streaming route before the plain CRUD ones
		apiGroup.GET("/:entity/:key/stream", StreamHandler(h))

		apiGroup.POST("/:entity", CreateHandler(h))
		apiGroup.GET("/:entity", ListHandler(h))
		apiGroup.GET("/:entity/:key", GetOneHandler(h))
		apiGroup.PUT("/:entity/:key", UpdateHandler(h, false))
		apiGroup.PATCH("/:entity/:key", UpdateHandler(h, true))
		apiGroup.DELETE("/:entity/:key", DeleteHandler(h))
	}

	return r
}

func RunServer(addr string, h *Handle) {
	_ = NewRouter(h).Run(addr)
}
