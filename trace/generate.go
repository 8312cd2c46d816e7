package trace

//go:generate mockgen -destination=mock/backend.go -package=mock github.com/stripe/apm/trace ClientBackend
