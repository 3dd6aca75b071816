package dto

type CreateDebateRequest struct {
	Topic          string `json:"topic" binding:"required"`
	Rounds         int    `json:"rounds" binding:"required,min=1,max=3"`
	RenderEndpoint string `json:"colab_url" binding:"required,url"`
}

type CreateDebateResponse struct {
	Success     bool    `json:"success"`
	SessionID   string  `json:"session_id"`
	VideoPath   string  `json:"video_path"`
	Filename    string  `json:"filename"`
	Duration    float64 `json:"duration_seconds"`
	VideoKey    string  `json:"video_key,omitempty"`
	VideoRegion string  `json:"video_region,omitempty"`
}

type DebateErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Stage   string `json:"stage,omitempty"`
	Turn    *int   `json:"turn,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
