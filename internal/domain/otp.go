package domain

import "time"

const (
	OTPTTL    = 10 * time.Minute
	OTPDigits = 4
)

type OneTimeCode struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"size:191;not null;index"`
	Code      string    `gorm:"size:8;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (OneTimeCode) TableName() string { return "otps" }

func (o *OneTimeCode) Expired(now time.Time) bool {
	return now.Sub(o.CreatedAt) > OTPTTL
}
