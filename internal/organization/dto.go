package organization

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}

type PositionsResponse struct {
	Positions []*Position `json:"positions"`
}
