package common

import "fmt"

// User-facing texts. The service speaks Uzbek, so do we.
const (
	MsgGenericError      = "Xatolik yuz berdi"
	MsgLimitReached      = "Kunlik limit tugadi. Davom etish uchun tizimga kiring yoki Premium'ga o'ting."
	MsgNoPlaceholders    = "To'ldiriladigan joylar topilmadi"
	MsgSignUpConfirm     = "Ro'yxatdan o'tish muvaffaqiyatli! Emailingizni tasdiqlang."
	MsgPasswordReset     = "Parolni tiklash havolasi emailingizga yuborildi."
	MsgServerUnavailable = "Server bilan aloqa yo'q"

	MsgEmptyPrompt      = "So'rov matnini kiriting"
	MsgNoFiles          = "Avval fayl yuklang"
	MsgEmptyInstruction = "Ko'rsatmani kiriting"
	MsgNothingToApply   = "Kamida bitta yangi qiymat kiriting"
	MsgAuthRequired     = "Avval tizimga kiring"
	MsgNotOwner         = "Faqat shablon egasi o'chira oladi"
	MsgBusy             = "Jarayon davom etmoqda, kuting"
)

// QuotaLine renders the remaining allowance the way the header badge shows it.
func QuotaLine(remaining int, premium bool) string {
	if premium {
		return "Premium: cheksiz"
	}
	return fmt.Sprintf("Bugun qoldi: %d ta", remaining)
}
