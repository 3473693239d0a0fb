package wire

import "fmt"

// Status is a CoAP response code: class in the top 3 bits, detail in the low 5.
type Status uint8

// NewStatus builds a status from its class and detail (e.g. 4, 4 for 4.04).
func NewStatus(class, detail uint8) Status {
	return Status(class<<5 | detail&0x1f)
}

const (
	StatusCreated             Status = 2<<5 | 1 // 2.01
	StatusDeleted             Status = 2<<5 | 2 // 2.02
	StatusChanged             Status = 2<<5 | 4 // 2.04
	StatusContent             Status = 2<<5 | 5 // 2.05
	StatusBadRequest          Status = 4<<5 | 0 // 4.00
	StatusUnauthorized        Status = 4<<5 | 1 // 4.01
	StatusNotFound            Status = 4<<5 | 4 // 4.04
	StatusMethodNotAllowed    Status = 4<<5 | 5 // 4.05
	StatusNotAcceptable       Status = 4<<5 | 6 // 4.06
	StatusInternalServerError Status = 5<<5 | 0 // 5.00
	StatusServiceUnavailable  Status = 5<<5 | 3 // 5.03
)

// Class returns the code class (2 success, 4 client error, 5 server error).
func (s Status) Class() uint8 { return uint8(s) >> 5 }

// Detail returns the code detail.
func (s Status) Detail() uint8 { return uint8(s) & 0x1f }

// IsSuccess reports whether s is a 2.xx code.
func (s Status) IsSuccess() bool { return s.Class() == 2 }

// String returns the dotted code with its name, e.g. "4.04 Not Found".
func (s Status) String() string {
	code := fmt.Sprintf("%d.%02d", s.Class(), s.Detail())
	switch s {
	case StatusCreated:
		return code + " Created"
	case StatusDeleted:
		return code + " Deleted"
	case StatusChanged:
		return code + " Changed"
	case StatusContent:
		return code + " Content"
	case StatusBadRequest:
		return code + " Bad Request"
	case StatusUnauthorized:
		return code + " Unauthorized"
	case StatusNotFound:
		return code + " Not Found"
	case StatusMethodNotAllowed:
		return code + " Method Not Allowed"
	case StatusNotAcceptable:
		return code + " Not Acceptable"
	case StatusInternalServerError:
		return code + " Internal Server Error"
	case StatusServiceUnavailable:
		return code + " Service Unavailable"
	default:
		return code
	}
}
