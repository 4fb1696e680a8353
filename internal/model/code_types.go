package model

import "strings"

// CodeType identifies the billing code system a code belongs to.
// Known values are the CMS-defined systems below; unrecognized values
// round-trip untouched so hospital-specific systems are not lost.
type CodeType string

const (
	CodeTypeCPT     CodeType = "CPT"
	CodeTypeHCPCS   CodeType = "HCPCS"
	CodeTypeICD     CodeType = "ICD"
	CodeTypeDRG     CodeType = "DRG"
	CodeTypeMSDRG   CodeType = "MS-DRG"
	CodeTypeRDRG    CodeType = "R-DRG"
	CodeTypeSDRG    CodeType = "S-DRG"
	CodeTypeAPSDRG  CodeType = "APS-DRG"
	CodeTypeAPDRG   CodeType = "AP-DRG"
	CodeTypeAPRDRG  CodeType = "APR-DRG"
	CodeTypeTRISDRG CodeType = "TRIS-DRG"
	CodeTypeAPC     CodeType = "APC"
	CodeTypeNDC     CodeType = "NDC"
	CodeTypeHIPPS   CodeType = "HIPPS"
	CodeTypeLOCAL   CodeType = "LOCAL"
	CodeTypeEAPG    CodeType = "EAPG"
	CodeTypeCDT     CodeType = "CDT"
	CodeTypeRC      CodeType = "RC"
	CodeTypeCDM     CodeType = "CDM"
)

// AllCodeTypes lists the CMS-defined code types in canonical order.
var AllCodeTypes = []CodeType{
	CodeTypeCPT,
	CodeTypeHCPCS,
	CodeTypeICD,
	CodeTypeDRG,
	CodeTypeMSDRG,
	CodeTypeRDRG,
	CodeTypeSDRG,
	CodeTypeAPSDRG,
	CodeTypeAPDRG,
	CodeTypeAPRDRG,
	CodeTypeTRISDRG,
	CodeTypeAPC,
	CodeTypeNDC,
	CodeTypeHIPPS,
	CodeTypeLOCAL,
	CodeTypeEAPG,
	CodeTypeCDT,
	CodeTypeRC,
	CodeTypeCDM,
}

// PrimaryCodePriority orders code systems by preference when resolving a
// document's primary lookup code. Procedure-level systems come first,
// grouper systems next, hospital-local systems last. The order is fixed:
// changing it changes every stored document key.
var PrimaryCodePriority = []CodeType{
	CodeTypeCPT,
	CodeTypeHCPCS,
	CodeTypeMSDRG,
	CodeTypeDRG,
	CodeTypeAPRDRG,
	CodeTypeAPDRG,
	CodeTypeAPSDRG,
	CodeTypeSDRG,
	CodeTypeRDRG,
	CodeTypeTRISDRG,
	CodeTypeAPC,
	CodeTypeEAPG,
	CodeTypeNDC,
	CodeTypeHIPPS,
	CodeTypeCDT,
	CodeTypeRC,
	CodeTypeCDM,
	CodeTypeLOCAL,
	CodeTypeICD,
}

// ParseCodeType canonicalizes a raw code-type string: trimmed and
// upper-cased. Unknown systems are preserved rather than rejected.
func ParseCodeType(raw string) CodeType {
	return CodeType(strings.ToUpper(strings.TrimSpace(raw)))
}

// Known reports whether ct is one of the CMS-defined code types.
func (ct CodeType) Known() bool {
	for _, known := range AllCodeTypes {
		if ct == known {
			return true
		}
	}
	return false
}
