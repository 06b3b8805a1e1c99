package helper_util

import (
	"strconv"

	"github.com/gin-gonic/gin"

	vigil_errors "github.com/clearledger/vigil/api/errors"
)

// GetPageParams reads page/limit query parameters. Out-of-range values are
// rejected here, before anything touches the store.
func GetPageParams(c *gin.Context, defaultLimit, maxLimit int) (page int, limit int, err error) {
	page, err = strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, vigil_errors.ErrInvalidPagination
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, 0, vigil_errors.ErrInvalidPagination
	}
	return page, limit, nil
}
