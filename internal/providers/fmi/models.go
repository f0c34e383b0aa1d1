package fmi

import (
	"encoding/xml"
	"net/url"
)

// XML namespaces used by the FMI WFS 2.0 responses
const (
	NamespaceWFS   = "http://www.opengis.net/wfs/2.0"
	NamespaceGML   = "http://www.opengis.net/gml/3.2"
	NamespaceBsWfs = "http://xml.fmi.fi/schema/wfs/2.0"
)

var (
	memberName         = xml.Name{Space: NamespaceWFS, Local: "member"}
	posName            = xml.Name{Space: NamespaceGML, Local: "pos"}
	parameterNameName  = xml.Name{Space: NamespaceBsWfs, Local: "ParameterName"}
	parameterValueName = xml.Name{Space: NamespaceBsWfs, Local: "ParameterValue"}
)

// Stored query identifiers
const (
	QueryObservationsSimple = "fmi::observations::weather::simple"
	QueryHarmonieGrid       = "fmi::forecast::harmonie::surface::grid"
)

// Parameter names
const (
	ParamTemperature = "t2m"
	ParamWindSpeed   = "ws_10min"
)

// MissingValue is the literal the service returns for a missing reading
const MissingValue = "NaN"

// StoredQuery describes a GetFeature call against a server-side stored query
type StoredQuery struct {
	ID         string
	Parameters []string
	// Extra holds query-specific parameters such as latest, bbox or timestep
	Extra url.Values
}

// Member holds the fields extracted from one wfs:member element.
// A nil field means the element was not present in the member.
type Member struct {
	Pos            *string
	ParameterName  *string
	ParameterValue *string
}
