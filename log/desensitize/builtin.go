package desensitize

import (
	"maps"
	"slices"
)

const mask = "******"

var (
	// AuthRule 订阅 auth 密钥（{"auth":"..."}）
	AuthRule = mustFieldRule("auth", "auth", `.+`, mask)

	// P256dhRule 订阅公钥，保留前 8 个字符便于排查
	P256dhRule = mustFieldRule("p256dh", "p256dh", `^(.{8}).+$`, "${1}"+mask)

	// PrivateKeyRule 私钥 PEM 正文
	PrivateKeyRule = mustContentRule(
		"private_key",
		`-----BEGIN ([A-Z ]*)PRIVATE KEY-----[\s\S]*?-----END ([A-Z ]*)PRIVATE KEY-----`,
		"-----BEGIN ${1}PRIVATE KEY-----"+mask+"-----END ${2}PRIVATE KEY-----",
	)

	// VAPIDTokenRule Authorization 头 vapid t= 中的 JWT
	VAPIDTokenRule = mustContentRule(
		"vapid_token",
		`(vapid\s+t=)[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`,
		"${1}"+mask,
	)

	// EmailRule VAPID subject 中的邮箱 (mailto:admin@example.com -> a***n@e***.com)，默认不启用
	EmailRule = mustContentRule(
		"email",
		`\b([A-Za-z0-9])[A-Za-z0-9._%+-]*([A-Za-z0-9])@([A-Za-z0-9])[A-Za-z0-9.-]*\.([A-Za-z]{2,})\b`,
		"$1***$2@$3***.$4",
	)

	// TokenRule {"token":"..."} 字段
	TokenRule = mustFieldRule("token", "token", `.+`, mask)

	// SecretRule {"secret":"..."} 字段
	SecretRule = mustFieldRule("secret", "secret", `.+`, mask)
)

var builtin = map[string]Rule{}

func init() {
	for _, r := range []Rule{AuthRule, P256dhRule, PrivateKeyRule, VAPIDTokenRule, EmailRule, TokenRule, SecretRule} {
		builtin[r.Name()] = r
	}
}

// Lookup 按名称查找内置规则
func Lookup(name string) (Rule, bool) {
	r, ok := builtin[name]
	return r, ok
}

// Names 返回全部内置规则名（有序）
func Names() []string {
	return slices.Sorted(maps.Keys(builtin))
}

// DefaultRuleNames 默认启用的规则：推送订阅密钥、私钥与 VAPID 令牌，不含 email
func DefaultRuleNames() []string {
	return []string{"auth", "p256dh", "private_key", "vapid_token", "token", "secret"}
}

// NewBuiltinHook 创建加载默认规则的钩子
func NewBuiltinHook() *Hook {
	h, _ := NewHookByName(DefaultRuleNames()...)
	return h
}
