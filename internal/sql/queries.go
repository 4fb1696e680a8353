package sql

import (
	_ "embed"
)

//go:embed queries/resolve_hospital.sql
var ResolveHospital string

//go:embed queries/upsert_hospital.sql
var UpsertHospital string

//go:embed queries/list_hospitals.sql
var ListHospitals string

//go:embed queries/upsert_charge_documents.sql
var UpsertChargeDocuments string

//go:embed queries/upsert_modifier_documents.sql
var UpsertModifierDocuments string

//go:embed queries/delete_hospital_charges.sql
var DeleteHospitalCharges string

//go:embed queries/delete_hospital_modifiers.sql
var DeleteHospitalModifiers string

//go:embed queries/charges_by_code.sql
var ChargesByCode string

//go:embed queries/charges_by_hospital.sql
var ChargesByHospital string

//go:embed queries/search_charges.sql
var SearchCharges string

//go:embed queries/export_charges.sql
var ExportCharges string

//go:embed queries/pricing_cache_get.sql
var PricingCacheGet string

//go:embed queries/pricing_cache_put.sql
var PricingCachePut string

//go:embed queries/pricing_cache_touch.sql
var PricingCacheTouch string
