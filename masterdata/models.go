package masterdata

import "time"

// City is a station the business operates between.
type City struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Agency is a partner office shipments are booked through.
type Agency struct {
	ID        string
	Name      string
	CityID    string
	Phone     *string
	CreatedAt time.Time
}

// Vehicle carries shipments between stations.
type Vehicle struct {
	ID        string
	Number    string
	Kind      string
	CreatedAt time.Time
}

// Party is a sender or receiver on a shipment.
type Party struct {
	ID        string
	Name      string
	Phone     *string
	Address   *string
	CityID    *string
	CreatedAt time.Time
}

// Labourer is a labour person assignments are dispatched to.
type Labourer struct {
	ID        string
	Name      string
	Phone     *string
	AgencyID  *string
	CreatedAt time.Time
}
