// util/helper/api.go
package helper_util

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetPaginationParams reads the limit/offset query parameters for the
// whitelist listing endpoint, defaulting to the first page of 10 entries.
// Negative values are rejected alongside non-numeric ones.
func GetPaginationParams(c *gin.Context) (limit int, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		return 0, 0, err
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		return 0, 0, err
	}
	if limit < 0 || offset < 0 {
		return 0, 0, fmt.Errorf("limit and offset must be non-negative")
	}
	return limit, offset, nil
}
