package notice

// Package notice provides the user-facing texts of the bot

import (
	"fmt"
	"strings"
)

// Localization holds notice translations for one language
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyWelcome          = "welcome"
	KeyAnalyzing        = "analyzing"
	KeySelectQuality    = "select_quality"
	KeyProcessing       = "processing"
	KeyDownloading      = "downloading"
	KeyChecking         = "checking"
	KeySending          = "sending"
	KeySent             = "sent"
	KeyTooLarge         = "too_large"
	KeyUnsupported      = "unsupported_platform"
	KeyAnalyzeFailed    = "analyze_failed"
	KeyFailed           = "failed"
	KeyNoOptions        = "no_options"
	KeyNotYourDownload  = "not_your_download"
	KeyDownloadExpired  = "download_expired"
	KeyPlaylistReduced  = "playlist_reduced"
	DefaultLanguageCode = "en"
)

// NewLocalization creates a localization for lang, falling back to English
func NewLocalization(lang string) *Localization {
	l := &Localization{
		currentLanguage: DefaultLanguageCode,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	l.setLanguage(lang)
	return l
}

func (l *Localization) setLanguage(lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts[DefaultLanguageCode]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// Format returns localized text for key with args substituted
func (l *Localization) Format(key string, args ...any) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// SelectQuality returns the option prompt for platform
func (l *Localization) SelectQuality(platform string) string {
	return l.Format(KeySelectQuality, platform)
}

// Sent returns the success notice for an artifact of sizeMB
func (l *Localization) Sent(sizeMB float64) string {
	return l.Format(KeySent, sizeMB)
}

// TooLarge returns the size rejection notice
func (l *Localization) TooLarge(sizeMB float64, limitMB int64) string {
	return l.Format(KeyTooLarge, sizeMB, limitMB)
}

// Unsupported returns the unsupported platform notice listing platforms
func (l *Localization) Unsupported(platforms []string) string {
	return l.Format(KeyUnsupported, strings.Join(platforms, ", "))
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyWelcome:         "👋 Hi!\n\n📥 Send a link from YouTube, Instagram, TikTok, Facebook, Twitter, Pinterest, Reddit or Vimeo.\n\n📎 Pick a quality and get the file.",
		KeyAnalyzing:       "🔍 Analyzing...",
		KeySelectQuality:   "📊 Select quality:\n\n🔗 %s",
		KeyProcessing:      "Processing...",
		KeyDownloading:     "⏳ Downloading...",
		KeyChecking:        "🔎 Checking...",
		KeySending:         "📤 Sending...",
		KeySent:            "✅ Sent! (%.1fMB)",
		KeyTooLarge:        "❌ Too large (%.1fMB)\nLimit: %dMB\n\nTry a lower quality",
		KeyUnsupported:     "❌ This platform is not supported\n\n✅ Supported platforms:\n%s",
		KeyAnalyzeFailed:   "❌ Error analyzing video\nTry another link",
		KeyFailed:          "❌ Error\nTry another link",
		KeyNoOptions:       "❌ No downloadable formats found\nTry another link",
		KeyNotYourDownload: "This is not your download. Send the link yourself",
		KeyDownloadExpired: "Download expired, please send link again",
		KeyPlaylistReduced: "Only the first video of the playlist is offered",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyWelcome:         "👋 Привет!\n\n📥 Отправьте ссылку с YouTube, Instagram, TikTok, Facebook, Twitter, Pinterest, Reddit или Vimeo.\n\n📎 Выберите качество и получите файл.",
		KeyAnalyzing:       "🔍 Анализ...",
		KeySelectQuality:   "📊 Выберите качество:\n\n🔗 %s",
		KeyProcessing:      "Обработка...",
		KeyDownloading:     "⏳ Загрузка...",
		KeyChecking:        "🔎 Проверка...",
		KeySending:         "📤 Отправка...",
		KeySent:            "✅ Отправлено! (%.1fMB)",
		KeyTooLarge:        "❌ Слишком большой файл (%.1fMB)\nЛимит: %dMB\n\nВыберите качество ниже",
		KeyUnsupported:     "❌ Эта платформа не поддерживается\n\n✅ Поддерживаемые платформы:\n%s",
		KeyAnalyzeFailed:   "❌ Ошибка анализа видео\nПопробуйте другую ссылку",
		KeyFailed:          "❌ Ошибка\nПопробуйте другую ссылку",
		KeyNoOptions:       "❌ Нет доступных форматов\nПопробуйте другую ссылку",
		KeyNotYourDownload: "Это не ваша загрузка. Отправьте ссылку сами",
		KeyDownloadExpired: "Срок выбора истёк, отправьте ссылку снова",
		KeyPlaylistReduced: "Доступно только первое видео плейлиста",
	}

	// Uzbek texts
	l.texts["uz"] = map[string]string{
		KeyWelcome:         "👋 Assalomu aleykum!\n\n📥 Instagram, TikTok, YouTube va Pinterest'dan video yuklab olishingiz mumkin.\n\n📎 Havola yuboring va videoni oling!",
		KeyAnalyzing:       "Tahlil qilinmoqda...",
		KeySelectQuality:   "📊 Sifatni tanlang:\n\n🔗 %s",
		KeyProcessing:      "Ishlanmoqda...",
		KeyDownloading:     "Yuklanmoqda...",
		KeyChecking:        "Tekshirilmoqda...",
		KeySending:         "Yuborilmoqda...",
		KeySent:            "Tayyor! (%.1fMB)",
		KeyTooLarge:        "Juda katta (%.1fMB)\nLimiti: %dMB\n\nPastroq sifatni tanlang",
		KeyUnsupported:     "❌ Bu platforma qo'llab-quvvatlanmaydi\n\n✅ Qo'llab-quvvatlanadigan platformalar:\n%s",
		KeyAnalyzeFailed:   "Xatolik\nBoshqa havola yuboring",
		KeyFailed:          "Xatolik\nBoshqa havola yuboring",
		KeyNotYourDownload: "Bu sizning yuklamangiz emas. Havolani o'zingiz yuboring",
		KeyDownloadExpired: "Muddat tugadi, havolani qayta yuboring",
	}
}
