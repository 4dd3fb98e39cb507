package handlers

// Short, localized hints shown next to the raw error message. Only the codes
// a user can act on carry a hint.
var hints = map[string]map[string]string{
	"unsupported_file": {
		"en": "Please choose an image file.",
		"id": "Silakan pilih berkas gambar.",
	},
	"missing_image": {
		"en": "Upload a photo or take one with the camera first.",
		"id": "Unggah foto atau ambil dengan kamera terlebih dahulu.",
	},
	"empty_prompt": {
		"en": "Describe the edit you want.",
		"id": "Jelaskan suntingan yang Anda inginkan.",
	},
	"edit_in_flight": {
		"en": "Wait for the current edit to finish.",
		"id": "Tunggu sampai suntingan saat ini selesai.",
	},
	"no_result": {
		"en": "Try rephrasing the prompt.",
		"id": "Coba ubah kalimat prompt.",
	},
	"camera_unavailable": {
		"en": "Check the camera permission in your browser.",
		"id": "Periksa izin kamera di peramban Anda.",
	},
}

func userHint(code, locale string) string {
	byLocale, ok := hints[code]
	if !ok {
		return ""
	}
	if msg, ok := byLocale[locale]; ok {
		return msg
	}
	return byLocale["en"]
}
