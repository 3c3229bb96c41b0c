package model

type Card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Rarity   string `json:"rarity"`
	SetName  string `json:"set_name"`
	ImageURL string `json:"image_url"`
}
