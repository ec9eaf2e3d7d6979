package domain

// Screen identifies a screen in the app's navigation graph.
type Screen string

const (
	ScreenSplash           Screen = "Splash"
	ScreenOnboarding       Screen = "Onboarding"
	ScreenAuthGateway      Screen = "AuthGateway"
	ScreenHomeFeed         Screen = "HomeFeed"
	ScreenSearchFilter     Screen = "SearchFilter"
	ScreenFlightDetail     Screen = "FlightDetail"
	ScreenCheckoutTraveler Screen = "CheckoutTraveler"
	ScreenCheckoutPayment  Screen = "CheckoutPayment"
)

// OnboardingCard is one page of the onboarding carousel.
type OnboardingCard struct {
	Eyebrow     string
	Title       string
	Description string
}

// SignInMethod is one of the auth gateway's entry points.
type SignInMethod string

const (
	SignInMethodEmail    SignInMethod = "EMAIL"
	SignInMethodPhoneOTP SignInMethod = "PHONE_OTP"
	SignInMethodSocial   SignInMethod = "SOCIAL"
)
