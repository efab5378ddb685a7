package clients

type CreateClientRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	RegistrationNo *string `json:"registration_no,omitempty" validate:"omitempty,max=50"`
	Jurisdiction   string  `json:"jurisdiction" validate:"required,len=2"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
}

type UpdateClientRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=200"`
	RegistrationNo *string `json:"registration_no,omitempty" validate:"omitempty,max=50"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Status         *string `json:"status,omitempty" validate:"omitempty,oneof=active dormant offboarded"`
}

type ListClientsRequest struct {
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=active dormant offboarded"`
	Search *string `json:"search,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=200"`
	Offset int     `json:"offset" validate:"gte=0"`
}
