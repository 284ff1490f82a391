package controllers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/options"

	services "github.com/phillip/fundraiser-go/services"
)

func optionsFindOneAndUpdateAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// serviceError writes a service-layer error with its machine-readable kind.
func serviceError(c *gin.Context, err error) {
	c.JSON(services.StatusCode(err), gin.H{
		"error": err.Error(),
		"kind":  services.Kind(err),
	})
}
