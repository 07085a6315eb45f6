package ginmw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	wc "github.com/reoring/wirecodec"
	ginmw "github.com/reoring/wirecodec/middleware/gin"
	"github.com/reoring/wirecodec/source/json"
)

type name struct{ Value string }

var nameRecord = wc.Record{Name: "Name", Fields: []wc.Field{{Name: "value"}}}

func (n *name) UnmarshalWire(d wc.Decoder) error {
	return nameRecord.Decode(d, func(_ string, v wc.Decoder) (err error) {
		n.Value, err = v.DecodeString()
		return err
	})
}

func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", ginmw.Validate[name]([]wc.Format{json.Format}, wc.DecodeOpt{Mode: wc.Strict}), func(c *gin.Context) {
		n, ok := ginmw.Get[name](c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, n.Value)
	})
	return r
}

func TestValidate(t *testing.T) {
	rec := httptest.NewRecorder()
	router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value":"ok"}`)))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("%d %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value":"ok","extra":1}`)))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"code":"unknown_key"`) {
		t.Fatalf("%d %s", rec.Code, rec.Body)
	}
}
