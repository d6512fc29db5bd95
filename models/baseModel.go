package models

import "time"

// Base carries the fields every stored entity shares. ID and the timestamps are
// owned by the repository; callers never set them.
type Base struct {
	ID        string `gorm:"primaryKey;column:id" json:"id"`
	CreatedAt int64  `gorm:"column:created_at;not null;index;autoCreateTime:milli" json:"createdAt"`
	UpdatedAt int64  `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updatedAt"`
	IsActive  bool   `gorm:"column:is_active;not null;default:true;index" json:"isActive"`
}

// Entity is implemented by pointers to every stored model.
type Entity interface {
	Meta() *Base
}

// Meta exposes the shared fields so generic code can stamp them.
func (b *Base) Meta() *Base {
	return b
}

// Touch sets UpdatedAt to t in epoch milliseconds.
func (b *Base) Touch(t time.Time) {
	b.UpdatedAt = t.UnixMilli()
}

// UserInfo is the personal data shared by patients and employees.
type UserInfo struct {
	Name           string `gorm:"column:name;not null" json:"name"`
	LastName       string `gorm:"column:last_name;not null;index" json:"lastName"`
	Identification string `gorm:"column:identification;index" json:"identification"`
	Email          string `gorm:"column:email;index" json:"email"`
	Phone          string `gorm:"column:phone" json:"phone"`
	Address        string `gorm:"column:address" json:"address"`
	BirthDate      int64  `gorm:"column:birth_date" json:"birthDate,omitempty"`
}

// FullName returns "Name LastName".
func (u UserInfo) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}
