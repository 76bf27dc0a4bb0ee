package models

// Draft is a snapshot of an in-progress post composition. Exactly one draft
// slot exists per user; every save overwrites the previous value.
type Draft struct {
	FoodName     string   `json:"foodName"`
	Description  string   `json:"description"`
	MealType     string   `json:"mealType"`
	Calories     int      `json:"calories"`
	Tags         []string `json:"tags"`
	ImageDataURL string   `json:"imageDataUrl"`
}

// Empty reports whether the draft carries no composed content.
func (d Draft) Empty() bool {
	return d.FoodName == "" && d.Description == "" && d.MealType == "" &&
		d.Calories == 0 && len(d.Tags) == 0 && d.ImageDataURL == ""
}
