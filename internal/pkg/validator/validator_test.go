package validator

import "testing"

type variantParams struct {
	Width  int `json:"width" validate:"required,gte=1,lte=10000"`
	Height int `json:"height" validate:"required,gte=1,lte=10000"`
}

type uploadParams struct {
	Filename string `json:"filename" validate:"required,max=255,image_ext"`
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	errs := Validate(&variantParams{Width: 100})
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	if _, ok := errs["height"]; !ok {
		t.Errorf("expected error keyed by json name, got %v", errs)
	}
	if _, ok := errs["Height"]; ok {
		t.Errorf("expected no struct field name key, got %v", errs)
	}
}

func TestValidateBounds(t *testing.T) {
	if errs := Validate(&variantParams{Width: 100, Height: 80}); errs != nil {
		t.Errorf("expected valid params, got %v", errs)
	}
	if errs := Validate(&variantParams{Width: 20000, Height: 80}); errs == nil {
		t.Error("expected error for width above the cap")
	}
}

func TestValidateImageExt(t *testing.T) {
	valid := []string{"photo.png", "photo.gif", "photo.jpg", "photo.jpeg", "PHOTO.PNG", "a.b.jpeg"}
	for _, name := range valid {
		if errs := Validate(&uploadParams{Filename: name}); errs != nil {
			t.Errorf("%s: expected valid, got %v", name, errs)
		}
	}

	invalid := []string{"notes.txt", "archive.zip", "photo.webp", "png", "photo"}
	for _, name := range invalid {
		errs := Validate(&uploadParams{Filename: name})
		if errs == nil {
			t.Errorf("%s: expected validation error", name)
			continue
		}
		if _, ok := errs["filename"]; !ok {
			t.Errorf("%s: expected filename error, got %v", name, errs)
		}
	}
}
