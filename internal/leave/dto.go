package leave

type ApplyRequest struct {
	Type        string  `json:"type" validate:"required,max=50"`
	StartDate   string  `json:"startDate" validate:"required"`
	EndDate     string  `json:"endDate" validate:"required"`
	PartDayType string  `json:"partDayType" validate:"required,oneof=FULL AM PM TIME"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Reason      string  `json:"reason" validate:"max=500"`
}

func (r ApplyRequest) ToInput() ApplyInput {
	return ApplyInput{
		Type:        r.Type,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		PartDayType: r.PartDayType,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Reason:      r.Reason,
	}
}

type DecisionRequest struct {
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

type ApplicationsResponse struct {
	Applications []*Application `json:"applications"`
	Total        int64          `json:"total"`
	Limit        int            `json:"limit"`
	Offset       int            `json:"offset"`
}

type PendingResponse struct {
	Applications []*Application `json:"applications"`
}
