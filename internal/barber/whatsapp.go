package barber

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	whatsAppSendURL     = "https://api.whatsapp.com/send"
	defaultCountryCode  = "34"
	reminderShopName    = "TacBarber"
	reminderServiceName = "tu cita"
)

// NormalizePhone keeps the digits and prefixes the Spanish country code when
// it is missing.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, defaultCountryCode) {
		digits = defaultCountryCode + digits
	}
	return digits
}

// ReminderMessage is the text sent to the client about an appointment.
func ReminderMessage(a Appointment) string {
	name := "cliente"
	if a.Client != nil && a.Client.DisplayName() != "" {
		name = a.Client.DisplayName()
	}
	service := a.ServiceName()
	if service == "" {
		service = reminderServiceName
	}
	return fmt.Sprintf(
		"Hola %s, te recordamos tu cita en %s para %s el día %s a las %s. Si no puedes asistir, avísanos respondiendo a este mensaje.",
		name, reminderShopName, service, a.DateLabel(), a.TimeLabel(),
	)
}

// WhatsAppURL builds the reminder link, or "" when the client has no usable
// phone number.
func WhatsAppURL(a Appointment) string {
	if a.Client == nil {
		return ""
	}
	phone := NormalizePhone(a.Client.Phone)
	if phone == "" {
		return ""
	}
	query := url.Values{}
	query.Set("phone", phone)
	query.Set("text", ReminderMessage(a))
	return whatsAppSendURL + "?" + query.Encode()
}
