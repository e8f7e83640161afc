package i18n

import "sync"

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "entry" or "kind").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_name":
			return "エントリ名が空です"
		case "invalid_option":
			return "この宣言では使えないオプションです"
		case "invalid_default":
			return "デフォルト値を複製できません"
		case "invalid_nested":
			return "ネストされたスキーマが不正です"
		case "shape_conflict":
			return "スキーマの形状が競合しています"
		case "sealed":
			return "スキーマは封印済みです"
		case "unknown_entry":
			return "未知のエントリです"
		case "nested_entry":
			return "ネストされたエントリにはコールバックが必要です"
		case "plain_entry":
			return "値エントリにコールバックは渡せません"
		case "keyed_entry":
			return "マッピングエントリにはキーが必要です"
		case "unkeyed_entry":
			return "このエントリはキーを取りません"
		case "convention_mismatch":
			return "サポートされていないコールバック形式です"
		}
	default: // "en"
		switch code {
		case "invalid_name":
			return "entry name is empty"
		case "invalid_option":
			return "option not allowed for this declaration"
		case "invalid_default":
			return "default value cannot be cloned"
		case "invalid_nested":
			return "invalid nested schema"
		case "shape_conflict":
			return "conflicting schema shape"
		case "sealed":
			return "schema is sealed"
		case "unknown_entry":
			return "unknown entry"
		case "nested_entry":
			return "nested entry requires a callback"
		case "plain_entry":
			return "plain entry does not take a callback"
		case "keyed_entry":
			return "mapping entry requires a key"
		case "unkeyed_entry":
			return "entry does not take a key"
		case "convention_mismatch":
			return "unsupported callback convention"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
