package types

import "time"

// Category is the inferred garment category of a product
type Category string

const (
	CategoryTop        Category = "top"
	CategoryBottom     Category = "bottom"
	CategoryDress      Category = "dress"
	CategoryOuterwear  Category = "outerwear"
	CategorySwimwear   Category = "swimwear"
	CategoryActivewear Category = "activewear"
	CategoryUnknown    Category = "unknown"
)

// Price represents a product price
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Product represents a clothing product detected on a store page
type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name" validate:"required"`
	Brand        string   `json:"brand"`
	Category     Category `json:"category"`
	Price        Price    `json:"price"`
	Images       []string `json:"images" validate:"required,min=1"`
	Sizes        []string `json:"sizes"`
	SelectedSize *string  `json:"selectedSize"`
	Color        string   `json:"color"`
	Material     *string  `json:"material"`
	URL          string   `json:"url"`
	SiteID       string   `json:"siteId"`
}

// Valid reports whether the product carries the fields required for a detection
func (p *Product) Valid() bool {
	return p != nil && p.Name != "" && len(p.Images) > 0
}

// SiteSelectors holds the CSS selectors used to scrape a store's product page
type SiteSelectors struct {
	ProductContainer string  `json:"productContainer" yaml:"product_container"`
	ProductName      string  `json:"productName" yaml:"product_name"`
	ProductPrice     string  `json:"productPrice" yaml:"product_price"`
	ProductImages    string  `json:"productImages" yaml:"product_images"`
	SizeSelector     string  `json:"sizeSelector" yaml:"size_selector"`
	SizeChart        *string `json:"sizeChart" yaml:"size_chart"`
}

// SiteConfig describes how to recognize and scrape one store
type SiteConfig struct {
	Domain            string        `json:"domain" yaml:"domain"`
	Name              string        `json:"name" yaml:"name"`
	URLPattern        string        `json:"urlPattern" yaml:"url_pattern"`
	TryOnButtonTarget string        `json:"tryOnButtonTarget" yaml:"try_on_button_target"`
	Selectors         SiteSelectors `json:"selectors" yaml:"selectors"`
}

// SizeChart represents a product size chart
type SizeChart struct {
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}

// PageReport is the outcome of running detection over one page
type PageReport struct {
	URL       string     `json:"url"`
	Outcome   string     `json:"outcome"`
	Product   *Product   `json:"product,omitempty"`
	HasAnchor bool       `json:"has_anchor"`
	SizeChart *SizeChart `json:"size_chart,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// User is an account on the try-on service
type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	AvatarID  *string `json:"avatarId"`
	CreatedAt string  `json:"createdAt"`
}

// AvatarStatus is the generation state of an avatar
type AvatarStatus string

const (
	AvatarPending    AvatarStatus = "pending"
	AvatarProcessing AvatarStatus = "processing"
	AvatarReady      AvatarStatus = "ready"
	AvatarFailed     AvatarStatus = "failed"
)

// Terminal reports whether the avatar will not change state anymore
func (s AvatarStatus) Terminal() bool {
	return s == AvatarReady || s == AvatarFailed
}

// Measurements are the body measurements used to build an avatar
type Measurements struct {
	HeightCm float64 `json:"heightCm" validate:"gt=0"`
	WeightKg float64 `json:"weightKg" validate:"gt=0"`
	ChestCm  float64 `json:"chestCm" validate:"gte=0"`
	WaistCm  float64 `json:"waistCm" validate:"gte=0"`
	HipsCm   float64 `json:"hipsCm" validate:"gte=0"`
}

// Avatar is a generated body model
type Avatar struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	MeshURL      string       `json:"meshUrl"`
	Measurements Measurements `json:"measurements"`
	Status       AvatarStatus `json:"status"`
	CreatedAt    string       `json:"createdAt"`
	UpdatedAt    string       `json:"updatedAt"`
}

// FitRating is the backend's verdict for one body region
type FitRating string

const (
	FitTooTight      FitRating = "Too tight"
	FitSnug          FitRating = "Snug"
	FitGood          FitRating = "Good fit"
	FitSlightlyLoose FitRating = "Slightly loose"
	FitTooLoose      FitRating = "Too loose"
	FitNotApplicable FitRating = "N/A"
)

// FitAnalysis holds per-region fit ratings
type FitAnalysis struct {
	Chest  FitRating `json:"chest"`
	Waist  FitRating `json:"waist"`
	Hips   FitRating `json:"hips"`
	Length FitRating `json:"length"`
}

// SizeAlternative is a size other than the recommended one
type SizeAlternative struct {
	Size           string `json:"size"`
	FitDescription string `json:"fitDescription"`
}

// SizeRecommendation is returned alongside a try-on result
type SizeRecommendation struct {
	RecommendedSize string            `json:"recommendedSize"`
	Confidence      float64           `json:"confidence"`
	Alternatives    []SizeAlternative `json:"alternatives"`
	FitAnalysis     FitAnalysis       `json:"fitAnalysis"`
}

// SizeSuggestion is the short answer of the size recommendation endpoint
type SizeSuggestion struct {
	Size       string  `json:"size"`
	Confidence float64 `json:"confidence"`
}

// TryOnResult is a rendered try-on of a product on an avatar
type TryOnResult struct {
	ID                 string             `json:"id"`
	AvatarID           string             `json:"avatarId"`
	ProductID          string             `json:"productId"`
	ImageURL           string             `json:"imageUrl"`
	ThumbnailURL       string             `json:"thumbnailUrl"`
	SizeRecommendation SizeRecommendation `json:"sizeRecommendation"`
	CreatedAt          string             `json:"createdAt"`
}

// TryOnRequest asks the backend to render a product on an avatar
type TryOnRequest struct {
	AvatarID     string  `json:"avatarId" validate:"required"`
	Product      Product `json:"product" validate:"required"`
	SelectedSize string  `json:"selectedSize" validate:"required"`
}

// AuthState summarizes the signed-in user
type AuthState struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	User            *User   `json:"user"`
	Avatar          *Avatar `json:"avatar"`
}

// FitPreference is how loosely the user likes clothes to fit
type FitPreference string

const (
	FitFitted  FitPreference = "fitted"
	FitRegular FitPreference = "regular"
	FitRelaxed FitPreference = "relaxed"
)

// Settings are the user's local preferences
type Settings struct {
	FitPreference   FitPreference `json:"fitPreference" validate:"required,oneof=fitted regular relaxed"`
	ShowTryOnButton bool          `json:"showTryOnButton"`
}

// DefaultSettings returns the settings used before the user changes anything
func DefaultSettings() Settings {
	return Settings{FitPreference: FitRegular, ShowTryOnButton: true}
}

// Config holds the configuration for page fetching
type Config struct {
	RequestDelay       time.Duration
	MaxRetries         int
	Timeout            time.Duration
	UseHeadlessBrowser bool
	UserAgent          string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:       1 * time.Second,
		MaxRetries:         3,
		Timeout:            30 * time.Second,
		UseHeadlessBrowser: false,
		UserAgent:          "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
