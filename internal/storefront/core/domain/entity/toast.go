package entity

import "time"

type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastDanger  ToastType = "danger"
	ToastInfo    ToastType = "info"
	ToastWarning ToastType = "warning"
)

func ParseToastType(s string) ToastType {
	switch t := ToastType(s); t {
	case ToastSuccess, ToastDanger, ToastInfo, ToastWarning:
		return t
	}
	return ToastInfo
}

type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      ToastType `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t Toast) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && !now.Before(t.CreatedAt.Add(ttl))
}
