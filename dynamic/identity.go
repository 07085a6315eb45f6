package dynamic

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	wc "github.com/reoring/wirecodec"
)

// identity renders a wire value into a string that is equal for equal values.
func identity(v any) string {
	var b strings.Builder
	writeIdentity(&b, v)
	return b.String()
}

func writeIdentity(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("n")
	case bool:
		b.WriteString("b" + strconv.FormatBool(x))
	case int64:
		b.WriteString("i" + strconv.FormatInt(x, 10))
	case float64:
		b.WriteString("f" + strconv.FormatFloat(x, 'g', -1, 64))
	case string:
		b.WriteString("s" + strconv.Quote(x))
	case []byte:
		b.WriteString("x" + base64.StdEncoding.EncodeToString(x))
	case []any:
		b.WriteString("[")
		for _, e := range x {
			writeIdentity(b, e)
			b.WriteString(",")
		}
		b.WriteString("]")
	case *wc.Map:
		b.WriteString("{")
		for _, e := range x.Entries {
			writeIdentity(b, e.Key)
			b.WriteString(":")
			writeIdentity(b, e.Value)
			b.WriteString(",")
		}
		b.WriteString("}")
	default:
		fmt.Fprintf(b, "?%T%v", v, v)
	}
}
