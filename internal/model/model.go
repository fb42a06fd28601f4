// Package model defines the core domain types for the studio booking system.
package model

import "time"

// Role is the privilege level of a user account.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ClassType identifies the kind of class taught in a session.
type ClassType string

const (
	// ClassTorno is a pottery-wheel class.
	ClassTorno ClassType = "torno"
	// ClassModelado is a hand-building class.
	ClassModelado ClassType = "modelado"
)

// Capacity returns the fixed seat count for the class type, or 0 when the
// type is unknown.
func (t ClassType) Capacity() int {
	switch t {
	case ClassTorno:
		return 7
	case ClassModelado:
		return 3
	default:
		return 0
	}
}

// Valid reports whether t is a known class type.
func (t ClassType) Valid() bool {
	return t.Capacity() > 0
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	// StatusActive bookings hold a seat.
	StatusActive BookingStatus = "active"
	// StatusCancelled bookings released their seat.
	StatusCancelled BookingStatus = "cancelled"
	// StatusRecovery is an administrative hold that does not hold a seat.
	StatusRecovery BookingStatus = "recovery"
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusRecovery:
		return true
	}
	return false
}

// User is a studio account.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NewUser is the input for creating a user. Password must already be hashed.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// ClassSession is a scheduled class with a fixed number of seats.
type ClassSession struct {
	ID        string    `json:"id"`
	Type      ClassType `json:"type"`
	StartTime time.Time `json:"startTime"`
	Capacity  int       `json:"capacity"`
	Enrolled  int       `json:"enrolled"`
}

// IsFull returns true when no seats remain.
func (c *ClassSession) IsFull() bool {
	return c.Enrolled >= c.Capacity
}

// Date returns the UTC calendar day of the session as YYYY-MM-DD.
func (c *ClassSession) Date() string {
	return c.StartTime.UTC().Format(time.DateOnly)
}

// NewClass is the input for creating a class session.
type NewClass struct {
	Type      ClassType
	StartTime time.Time
	Capacity  int
}

// ClassPatch carries optional updates to a class session.
type ClassPatch struct {
	Type      *ClassType
	StartTime *time.Time
	Capacity  *int
}

// Booking is a user's claim on a seat in a class session.
type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	ClassID     string        `json:"classId"`
	Status      BookingStatus `json:"status"`
	BookedAt    time.Time     `json:"bookedAt"`
	CancelledAt *time.Time    `json:"cancelledAt"`
}

// NewBooking is the input for creating a booking. An empty status means active.
type NewBooking struct {
	UserID  string
	ClassID string
	Status  BookingStatus
}

// EnrichedBooking is a booking together with the booker's contact details.
type EnrichedBooking struct {
	Booking
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the payload for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the payload for changing the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// CreateClassRequest is the payload for creating a class session.
type CreateClassRequest struct {
	Type      ClassType `json:"type" validate:"required,oneof=torno modelado"`
	StartTime time.Time `json:"startTime" validate:"required"`
	Capacity  int       `json:"capacity" validate:"omitempty,min=1,max=100"`
}

// UpdateClassRequest is the payload for patching a class session.
type UpdateClassRequest struct {
	Type      *ClassType `json:"type" validate:"omitempty,oneof=torno modelado"`
	StartTime *time.Time `json:"startTime"`
	Capacity  *int       `json:"capacity" validate:"omitempty,min=1,max=100"`
}

// CreateBookingRequest is the payload for booking a seat.
type CreateBookingRequest struct {
	ClassID string `json:"classId" validate:"required"`
}

// UpdateStatusRequest is the payload for the admin status override.
type UpdateStatusRequest struct {
	Status BookingStatus `json:"status" validate:"required"`
}

// HolidayRequest is the payload for adding a holiday.
type HolidayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a standard JSON acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
