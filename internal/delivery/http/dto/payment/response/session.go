package response

type SessionResponse struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	URL       string `json:"url"`
	Deeplink  string `json:"deeplink"`
	ExpiresAt string `json:"expiresAt"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
