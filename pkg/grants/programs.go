package grants

import "sort"

func text(column string, headers ...string) Field {
	return Field{Column: column, Aliases: append(headers, column), Kind: Text}
}

func year(column string, headers ...string) Field {
	return Field{Column: column, Aliases: append(headers, column), Kind: Year}
}

func money(column string, headers ...string) Field {
	return Field{Column: column, Aliases: append(headers, column), Kind: Money}
}

// GIA: Grants-in-Aid. Status is derived from allocated/obligated/disbursed amounts.
var GIA = &Program{
	Name:  "GIA",
	Path:  "gia",
	Table: "gia_grants",
	Mode:  Insert,
	Key:   "id",
	Fields: []Field{
		text("count_no", "Count"),
		{Column: "grant_name", Aliases: []string{"Grant", "grant_name"}, Kind: Text, Default: "GIA"},
		year("year_awarded", "Year Awarded"),
		text("uii", "UII"),
		text("hei_name", "HEI Name"),
		text("region", "Region"),
		text("project_title", "Project Title"),
		money("budget_approved", "AMOUNT", "Amount"),
		text("priority_area", "Priority Area"),
		text("psced_field_description", "PSCED Detailed Field Description"),
		text("psced_field_code", "PSCED Detailed Field Code"),
		money("mooe", "MOOE"),
		money("co_equipment", "CO (Equipment Outlay)"),
		money("amount_allocated", "ALLOCATED", "Allocated"),
		money("amount_obligated", "OBLIGATED", "Obligated"),
		money("amount_disbursed", "DISBURSED", "Disbursed"),
	},
	HEIType: &HEITypeRule{From: "hei_name", Column: "hei_type"},
	Status: &StatusRule{
		Allocated: "amount_allocated",
		Obligated: "amount_obligated",
		Disbursed: "amount_disbursed",
		Column:    "status",
	},
	Report: Report{
		YearColumn:   "year_awarded",
		AmountColumn: "amount_disbursed",
		Counting:     CountRows,
		Overview: []Metric{
			{Name: "totalGrants", Kind: CountProjects},
			{Name: "totalAmount", Kind: Sum, Column: "budget_approved"},
			{Name: "totalAllocated", Kind: Sum, Column: "amount_allocated"},
			{Name: "totalDisbursed", Kind: Sum, Column: "amount_disbursed"},
			{Name: "disbursedProjects", Kind: CountIn, Column: "status", Values: []string{string(Disbursed)}},
			{Name: "obligatedProjects", Kind: CountIn, Column: "status", Values: []string{string(Obligated)}},
			{Name: "allocatedProjects", Kind: CountIn, Column: "status", Values: []string{string(Allocated)}},
			{Name: "amountProjects", Kind: CountIn, Column: "status", Values: []string{string(Amount)}},
		},
		Groups: map[Dimension]Group{
			ByPriorityArea: {
				Column: "priority_area", Complete: []string{"hei_type", "status"},
				Order: AmountDesc, LabelKey: "area", WithAmount: true,
			},
			ByRegion: {
				Column: "region", Complete: []string{"priority_area", "hei_type", "status"},
				Order: LabelAsc, LabelKey: "region", WithAmount: true,
			},
			ByHEIType: {
				Column: "hei_type", Complete: []string{"priority_area", "status"},
				Order: AmountDesc, LabelKey: "type", WithAmount: true,
			},
			ByStatus: {
				Column: "status", Complete: []string{"priority_area", "hei_type"},
				Order: AmountDesc, LabelKey: "status", WithAmount: true,
			},
		},
	},
}

// IDIG: status is taken from the file as is.
var IDIG = &Program{
	Name:  "IDIG",
	Path:  "idig",
	Table: "idig_grants",
	Mode:  Insert,
	Key:   "id",
	Fields: []Field{
		text("project_id", "Project ID"),
		text("project_title", "Project Title"),
		year("year_awarded", "Year"),
		text("hei_name", "HEI Name"),
		text("region", "Region"),
		text("priority_area", "Priority Area"),
		money("budget_approved", "Budget"),
		money("amount_released", "Amount Released"),
		text("status", "Status"),
		text("remarks", "Remarks"),
		text("start_date", "Start Date"),
		text("end_date", "End Date"),
		text("extension_date", "Extension Date"),
	},
	HEIType: &HEITypeRule{From: "hei_name", Column: "hei_type"},
	Report: Report{
		YearColumn:   "year_awarded",
		AmountColumn: "amount_released",
		Counting:     CountRows,
		Overview: []Metric{
			{Name: "totalGrants", Kind: CountProjects},
			{Name: "totalAmount", Kind: Sum, Column: "budget_approved"},
			{Name: "totalReleased", Kind: Sum, Column: "amount_released"},
			{Name: "activeProjects", Kind: CountIn, Column: "status", Values: []string{"Ongoing"}},
			{Name: "completedProjects", Kind: CountIn, Column: "status", Values: []string{"Completed"}},
		},
		Groups: map[Dimension]Group{
			ByPriorityArea: {Column: "priority_area", Order: AmountDesc, LabelKey: "area", WithAmount: true},
			ByRegion:       {Column: "region", Order: LabelAsc, LabelKey: "region", WithAmount: true},
			ByHEIType:      {Column: "hei_type", Order: AmountDesc, LabelKey: "type", WithAmount: true},
			ByStatus:       {Column: "status", Order: AmountDesc, LabelKey: "status", WithAmount: true},
		},
	},
}

// monitoringFields is the import format of the monitoring spreadsheets
// shared by LAKAS and NAFES.
func monitoringFields() []Field {
	return []Field{
		text("control_no", "Control No."),
		text("incharge", "Incharge"),
		year("year_obligated", "YEAR OBLIGATED"),
		year("year_released", "YEAR RELEASED"),
		text("region", "REG"),
		text("platform", "NUCAF/PIAF/ASSAP"),
		text("hei", "HEI"),
		text("program_title", "PROGRAM/PROJECT TITLE\n(With Link to Documents)", "PROGRAM/PROJECT TITLE"),
		text("number_of_projects", "NUMBER OF PROJECTS"),
		text("brief_description", "BRIEF DESCRIPTION / RATIONALE"),
		text("objectives", "OBJECTIVES"),
		text("research_platform", "CHED RESEARCH PLATFORM"),
		money("budget_approved", "BUDGET APPROVED ", "BUDGET APPROVED"),
		money("budget_released", "BUDGET RELEASED"),
		text("lddap_ada_no", "LDDAP-ADA NO."),
		text("date_obligated", "DATE OBLIGATED"),
		text("date_granted", "DATE GRANTED"),
		text("receipt_received", "Receipt Received"),
		text("date_started", "DATE STARTED"),
		text("date_ended", "DATE ENDED"),
		text("extension_start_date", "EXTENSION START DATE"),
		text("extension_end_date", "EXTENSION END DATE"),
		text("duration", "DURATION"),
		text("status", "STATUS"),
		text("individual_beneficiaries", "INDIVIDUAL BENEFICIARIES"),
		text("total_beneficiaries", "TOTAL NO. OF INDIVIDUAL BENEFICIARIES"),
		text("collaborating_hei", "COLLABORATING HEI/S"),
		text("principal_investigator", "NAME OF PRINCIPAL INVESTIGATOR/S"),
		text("team_members", "TEAM MEMBER/S"),
		text("contact_numbers", "CONTACT NUMBER/S"),
		text("email_addresses", "EMAIL ADDRESS/ES"),
		text("ceb_reso_no", "CEB RESO NO. APPROVAL"),
		text("field_visit", "M&E FIELD VISIT"),
		text("encoder_remarks", "OTHER ENCODER REMARKS"),
		text("date_submitted_terminal", "Date Submitted Terminal Report? (with soft copy)"),
		text("date_submitted_financial", "Date Submitted Financial Report?"),
		money("amount_to_liquidate", "Amount to Liquidate"),
		text("remarks", "Remarks"),
		text("actual_beneficiaries", "Actual Beneficiaries"),
		text("project_accomplishments", "Project Accomplishments/Highlights"),
		text("documents", "Documents"),
	}
}

func monitoringReport() Report {
	return Report{
		YearColumn:     "year_obligated",
		AmountColumn:   "budget_approved",
		ReleasedColumn: "budget_released",
		Counting:       CountDistinctKey,
		Require:        []string{"control_no"},
		Overview: []Metric{
			{Name: "totalGrants", Kind: CountProjects},
			{Name: "totalAmount", Kind: Sum, Column: "budget_approved"},
			{Name: "totalReleased", Kind: Sum, Column: "budget_released"},
			{Name: "activeProjects", Kind: CountNotIn, Column: "status", Values: []string{"Completed", "Withdrawn"}},
			{Name: "completedProjects", Kind: CountIn, Column: "status", Values: []string{"Completed"}},
		},
		Groups: map[Dimension]Group{
			ByPriorityArea: {
				Column: "research_platform", Order: ProjectsDesc, LabelKey: "name",
				WithAmount: true, WithReleased: true,
			},
			ByRegion: {
				Column: "region", Order: ProjectsDesc, LabelKey: "region",
				WithAmount: true, WithReleased: true,
			},
			ByHEIType: {
				Column: "hei",
				Classes: []Class{
					{Label: "State Universities", Patterns: []string{"State University", "State College"}},
					{Label: "Local Colleges", Patterns: []string{"Polytechnic", "College"}},
				},
				Fallback: "Private HEIs",
				Order:    LabelAsc, LabelKey: "name",
				WithAmount: true, WithReleased: true,
			},
			ByStatus: {
				Column: "status", Order: ProjectsDesc, LabelKey: "name", CountKey: "value",
			},
		},
	}
}

var monitoringUpdates = []string{
	"incharge", "year_obligated", "region", "platform", "hei", "budget_approved", "status",
}

// LAKAS: re-uploads merge into existing rows by control number.
var LAKAS = &Program{
	Name:             "LAKAS",
	Path:             "lakas",
	Table:            "lakas_grants",
	Mode:             Upsert,
	Key:              "control_no",
	UpdateOnConflict: monitoringUpdates,
	Fields:           monitoringFields(),
	Report:           monitoringReport(),
}

// NAFES shares the monitoring spreadsheet layout of LAKAS, in its own table.
var NAFES = &Program{
	Name:             "NAFES",
	Path:             "nafes",
	Table:            "nafes_grants",
	Mode:             Upsert,
	Key:              "control_no",
	UpdateOnConflict: monitoringUpdates,
	Fields:           monitoringFields(),
	Report:           monitoringReport(),
}

// Catalogue is the set of programs served, by Path.
type Catalogue map[string]*Program

// Programs is the default catalogue.
var Programs = NewCatalogue(GIA, IDIG, LAKAS, NAFES)

func NewCatalogue(programs ...*Program) Catalogue {
	c := Catalogue{}
	for _, p := range programs {
		c[p.Path] = p
	}
	return c
}

// Sorted returns programs ordered by Path.
func (c Catalogue) Sorted() []*Program {
	ps := make([]*Program, 0, len(c))
	for _, p := range c {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Path < ps[j].Path })
	return ps
}
