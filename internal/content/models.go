package content

// Record kinds. Each struct is both the wire shape and the stored shape; the
// schema registry derives its field table from these tags.

// Profile is the site owner's profile.
type Profile struct {
	Name         string            `json:"name" bson:"name" validate:"required"`
	Subtitle     string            `json:"subtitle" bson:"subtitle" validate:"required"`
	Bio          string            `json:"bio" bson:"bio" validate:"required"`
	Education    []string          `json:"education" bson:"education"`
	SkillsDesign []string          `json:"skills_design" bson:"skills_design"`
	SkillsTech   []string          `json:"skills_tech" bson:"skills_tech"`
	Philosophy   string            `json:"philosophy" bson:"philosophy"`
	PortraitURL  *string           `json:"portrait_url" bson:"portrait_url" validate:"omitempty,http_url"`
	Email        *string           `json:"email" bson:"email" validate:"omitempty,email"`
	ResumeURL    *string           `json:"resume_url" bson:"resume_url" validate:"omitempty,http_url"`
	Socials      map[string]string `json:"socials" bson:"socials"`
}

// Project is a case study. Slug is unique per store (see Kind.Unique).
type Project struct {
	Title          string   `json:"title" bson:"title" validate:"required"`
	Slug           string   `json:"slug" bson:"slug" validate:"required"`
	Summary        string   `json:"summary" bson:"summary"`
	Tags           []string `json:"tags" bson:"tags"`
	CoverImage     *string  `json:"cover_image" bson:"cover_image" validate:"omitempty,http_url"`
	ProblemContext string   `json:"problem_context" bson:"problem_context"`
	Research       string   `json:"research" bson:"research"`
	Ideation       string   `json:"ideation" bson:"ideation"`
	ProcessImages  []string `json:"process_images" bson:"process_images" validate:"dive,http_url"`
	Outcomes       string   `json:"outcomes" bson:"outcomes"`
	Reflection     string   `json:"reflection" bson:"reflection"`
}

// CollectionItem is a gallery entry.
type CollectionItem struct {
	Category string  `json:"category" bson:"category" validate:"required,oneof='Visual Design' Typography Photography Motion 'Trend Research'"`
	Title    string  `json:"title" bson:"title" validate:"required"`
	ImageURL string  `json:"image_url" bson:"image_url" validate:"required,http_url"`
	Alt      *string `json:"alt" bson:"alt"`
}

// Experience is a timeline entry. Start and End are free-form text.
type Experience struct {
	Type        string  `json:"type" bson:"type" validate:"required,oneof=Internship Leadership Volunteering Achievement"`
	Role        string  `json:"role" bson:"role" validate:"required"`
	Org         string  `json:"org" bson:"org" validate:"required"`
	Start       string  `json:"start" bson:"start" validate:"required"`
	End         *string `json:"end" bson:"end"`
	Description *string `json:"description" bson:"description"`
}

type Service struct {
	Title       string `json:"title" bson:"title" validate:"required"`
	Description string `json:"description" bson:"description" validate:"required"`
}

type ContactMessage struct {
	Name    string `json:"name" bson:"name" validate:"required"`
	Email   string `json:"email" bson:"email" validate:"required,email"`
	Message string `json:"message" bson:"message" validate:"required"`
}
