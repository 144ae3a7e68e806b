package email

import (
	"fmt"
	"net/smtp"
)

// Service sends operational emails via SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendStockAlert notifies operations that a device model's available
// count dropped to or below the alert threshold.
func (s *Service) SendStockAlert(to, deviceID, deviceName string, count int) error {
	subject := fmt.Sprintf("[device-loans] Low availability: %s (%d left)", deviceName, count)
	body := BuildStockAlertBody(deviceID, deviceName, count)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
