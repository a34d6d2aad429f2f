package submissions

import "github.com/AdBoard-Booking/neon-insta-screen/internal/domain"

type submitRequest struct {
	Name            string `json:"name"`
	InstagramHandle string `json:"instagramHandle"`
	WhatsappContact string `json:"whatsappContact"`
	ImageURL        string `json:"imageUrl"`
	Source          string `json:"source"`
}

type submitResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type updateStatusRequest struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	FramedImageURL string `json:"framedImageUrl"`
}

type updateStatusResponse struct {
	Message    string             `json:"message"`
	Submission *domain.Submission `json:"submission,omitempty"`
}

type listResponse struct {
	Submissions []domain.Submission `json:"submissions"`
}
