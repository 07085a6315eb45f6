package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field", "expected" or "found").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			msg = "型が不正です"
		case "required":
			msg = "必須フィールド {field} が不足しています"
		case "unknown_key":
			msg = "未知のフィールド {field} です"
		case "duplicate_key":
			msg = "キーが重複しています"
		case "discriminator_missing":
			msg = "判別子 \"type\" がありません"
		case "discriminator_mismatch":
			msg = "判別子が一致しません ({expected} を期待しましたが {found} でした)"
		case "discriminator_unknown":
			msg = "未知のバリアント {found} です"
		case "excess_fields":
			msg = "union に余分なフィールドがあります"
		case "parse_error":
			msg = "解析エラー"
		case "truncated":
			msg = "打ち切られました"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			msg = "invalid type"
		case "required":
			msg = "required field {field} missing"
		case "unknown_key":
			msg = "unknown field {field}"
		case "duplicate_key":
			msg = "duplicate key"
		case "discriminator_missing":
			msg = "discriminator \"type\" missing"
		case "discriminator_mismatch":
			msg = "discriminator mismatch (expected {expected}, found {found})"
		case "discriminator_unknown":
			msg = "unknown variant {found}"
		case "excess_fields":
			msg = "union has fields besides type and value"
		case "parse_error":
			msg = "parse error"
		case "truncated":
			msg = "truncated"
		}
	}
	if msg == "" {
		return code
	}
	return fill(msg, data)
}

// fill substitutes {name} placeholders; unknown placeholders collapse to "".
func fill(msg string, data map[string]string) string {
	if !strings.Contains(msg, "{") {
		return msg
	}
	b := &strings.Builder{}
	for {
		i := strings.IndexByte(msg, '{')
		if i < 0 {
			b.WriteString(msg)
			break
		}
		j := strings.IndexByte(msg[i:], '}')
		if j < 0 {
			b.WriteString(msg)
			break
		}
		b.WriteString(msg[:i])
		if v := data[msg[i+1:i+j]]; v != "" {
			b.WriteString("'" + v + "'")
		}
		msg = msg[i+j+1:]
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
