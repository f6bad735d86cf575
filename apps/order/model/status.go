package model

// Status is stored verbatim in orders.status.
type Status string

const (
	StatusPreparing Status = "Hazırlanıyor"
	StatusPrinting  Status = "Baskı Aşamasında"
	StatusShipped   Status = "Kargoya Verildi"
	StatusDelivered Status = "Teslim Edildi"
	StatusCancelled Status = "İptal Edildi"
	StatusReturned  Status = "İade Edildi"
)

// flow is the forward sequence driven by the admin next/prev buttons.
var flow = []Status{StatusPreparing, StatusPrinting, StatusShipped, StatusDelivered}

func (s Status) position() int {
	for i, f := range flow {
		if f == s {
			return i
		}
	}
	return -1
}

// Next returns the following step, or s itself at the last step and for
// cancelled or returned orders.
func (s Status) Next() Status {
	i := s.position()
	if i < 0 || i == len(flow)-1 {
		return s
	}
	return flow[i+1]
}

// Prev returns the previous step, or s itself at the first step and for
// cancelled or returned orders.
func (s Status) Prev() Status {
	i := s.position()
	if i <= 0 {
		return s
	}
	return flow[i-1]
}

func (s Status) CanCancel() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusReturned:
		return false
	}
	return true
}

// Active reports whether the order still needs work from the shop.
func (s Status) Active() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusReturned:
		return false
	}
	return true
}

// Counted reports whether the order counts towards revenue and spend.
func (s Status) Counted() bool {
	return s != StatusCancelled && s != StatusReturned
}

func (s Status) Valid() bool {
	return s.position() >= 0 || s == StatusCancelled || s == StatusReturned
}

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusPreparing, StatusPrinting, StatusShipped, StatusDelivered, StatusCancelled, StatusReturned}
}

// Tab is one of the admin order views. The zero value lists every order.
type Tab string

const (
	TabAll       Tab = ""
	TabActive    Tab = "active"
	TabHistory   Tab = "history"
	TabCancelled Tab = "cancelled"
	TabReturned  Tab = "returned"
)

func (t Tab) Valid() bool {
	switch t {
	case TabAll, TabActive, TabHistory, TabCancelled, TabReturned:
		return true
	}
	return false
}

// Includes reports whether an order in status s belongs on the tab.
func (t Tab) Includes(s Status) bool {
	switch t {
	case TabActive:
		return s.Active()
	case TabHistory:
		return s == StatusDelivered
	case TabCancelled:
		return s == StatusCancelled
	case TabReturned:
		return s == StatusReturned
	}
	return true
}
