package vapid

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Payload returns the JSON claims set of the token:
//
//	{"aud":"<origin>","exp":<seconds>[,"sub":"<subject>"][,"<name>":<value>...]}
func (p *Param) Payload() string {
	var sb strings.Builder
	sb.WriteByte('{')

	writeString(&sb, "aud")
	sb.WriteByte(':')
	writeString(&sb, p.origin)

	sb.WriteString(`,"exp":`)
	sb.WriteString(strconv.FormatInt(p.ExpiresAtUnix(), 10))

	if p.subject != "" {
		sb.WriteString(`,"sub":`)
		writeString(&sb, p.subject)
	}

	for _, c := range p.claims {
		sb.WriteByte(',')
		writeString(&sb, c.name)
		sb.WriteByte(':')
		writeValue(&sb, c.value)
	}

	sb.WriteByte('}')
	return sb.String()
}

func writeValue(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case string:
		writeString(sb, v)
	case bool:
		sb.WriteString(strconv.FormatBool(v))
	case int32:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10))
	case float64:
		// plain notation, no trailing zeros: 1.50 -> 1.5, 2.0 -> 2, 1e21 -> 1000000000000000000000
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	case time.Time:
		sb.WriteString(strconv.FormatInt(v.Unix(), 10))
	default:
		sb.WriteString("null")
	}
}

func writeString(sb *strings.Builder, s string) {
	b, _ := json.Marshal(s)
	sb.Write(b)
}
