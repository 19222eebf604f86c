package model

import (
	"strconv"
	"strings"
)

// Part is a physical or logical unit in the array. The part number is the
// primary identity and is stored uppercase-normalized.
type Part struct {
	PN                 string
	PartType           string
	ManufacturerNumber string
	Start              int64
	Stop               *int64
}

// NewPart constructs a Part with an open validity interval starting at start.
func NewPart(pn, partType, manufacturerNumber string, start int64) Part {
	return Part{
		PN:                 strings.ToUpper(pn),
		PartType:           strings.ToLower(partType),
		ManufacturerNumber: manufacturerNumber,
		Start:              start,
	}
}

// Stopped returns a copy of the part with its validity interval closed at stop.
func (p Part) Stopped(stop int64) Part {
	p.Stop = &stop
	return p
}

// Restarted returns a copy of the part with a new open-ended validity
// interval beginning at start.
func (p Part) Restarted(start int64) Part {
	p.Start = start
	p.Stop = nil
	return p
}

// ActiveAt reports whether the part is valid at instant t.
func (p Part) ActiveAt(t int64) bool {
	return IntervalContains(p.Start, p.Stop, t)
}

// Connection is a directed, port-to-port, time-bounded link between two
// parts. Part numbers are uppercase, port names lowercase.
type Connection struct {
	UpstreamPart        string
	UpstreamOutputPort  string
	DownstreamPart      string
	DownstreamInputPort string
	Start               int64
	Stop                *int64
}

// NewConnection constructs a Connection with an open validity interval.
func NewConnection(upstreamPart, upstreamOutputPort, downstreamPart, downstreamInputPort string, start int64) Connection {
	return Connection{
		UpstreamPart:        strings.ToUpper(upstreamPart),
		UpstreamOutputPort:  strings.ToLower(upstreamOutputPort),
		DownstreamPart:      strings.ToUpper(downstreamPart),
		DownstreamInputPort: strings.ToLower(downstreamInputPort),
		Start:               start,
	}
}

// Stopped returns a copy of the connection closed at stop.
func (c Connection) Stopped(stop int64) Connection {
	c.Stop = &stop
	return c
}

// ActiveAt reports whether the connection is valid at instant t.
func (c Connection) ActiveAt(t int64) bool {
	return IntervalContains(c.Start, c.Stop, t)
}

// UpKey identifies the upstream side of the connection (part-port).
func (c Connection) UpKey() string {
	return c.UpstreamPart + "-" + c.UpstreamOutputPort
}

// DownKey identifies the downstream side of the connection (part-port).
func (c Connection) DownKey() string {
	return c.DownstreamPart + "-" + c.DownstreamInputPort
}

// Identity is the composite identity of the connection including its start time.
func (c Connection) Identity() string {
	return strings.Join([]string{
		c.UpstreamPart, c.UpstreamOutputPort,
		c.DownstreamPart, c.DownstreamInputPort,
		strconv.FormatInt(c.Start, 10),
	}, "|")
}

func (c Connection) String() string {
	return c.UpstreamPart + "<" + c.UpstreamOutputPort + "|" + c.DownstreamInputPort + ">" + c.DownstreamPart
}

// PartInfo is an append-only timestamped annotation attached to a part.
// Identity is (PN, PostingTime).
type PartInfo struct {
	PN          string
	PostingTime int64
	Comment     string
	Reference   string
}

// NewPartInfo constructs a PartInfo record.
func NewPartInfo(pn string, postingTime int64, comment, reference string) PartInfo {
	return PartInfo{
		PN:          strings.ToUpper(pn),
		PostingTime: postingTime,
		Comment:     comment,
		Reference:   reference,
	}
}

// AprioriStatus is a time-interval-scoped operational status label for an
// antenna-like part.
type AprioriStatus struct {
	Antenna string
	Status  string
	Start   int64
	Stop    *int64
}

// NewAprioriStatus constructs an open-ended status interval.
func NewAprioriStatus(antenna, status string, start int64) AprioriStatus {
	return AprioriStatus{
		Antenna: strings.ToUpper(antenna),
		Status:  status,
		Start:   start,
	}
}

// Stopped returns a copy of the status closed at stop.
func (a AprioriStatus) Stopped(stop int64) AprioriStatus {
	a.Stop = &stop
	return a
}

// ActiveAt reports whether the status interval contains instant t.
func (a AprioriStatus) ActiveAt(t int64) bool {
	return IntervalContains(a.Start, a.Stop, t)
}

// Station is a geographically-fixed part subtype.
type Station struct {
	Name      string
	Created   int64
	Easting   float64
	Northing  float64
	Elevation float64
}

// NewStation constructs a Station record.
func NewStation(name string, created int64, easting, northing, elevation float64) Station {
	return Station{
		Name:      strings.ToUpper(name),
		Created:   created,
		Easting:   easting,
		Northing:  northing,
		Elevation: elevation,
	}
}

// IntervalContains implements the half-open validity test shared by every
// temporal record: start <= t and (stop is nil or stop > t).
func IntervalContains(start int64, stop *int64, t int64) bool {
	if start > t {
		return false
	}
	return stop == nil || *stop > t
}
