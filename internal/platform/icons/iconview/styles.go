package iconview

// iconStyle is applied to every rendered icon.
const iconStyle = "icon shrink-0"

// placeholderClass is the pulsing stand-in shown while a lookup is pending.
const placeholderClass = "rounded-full bg-slate-400 animate-pulse h-8 w-8"

var wrapperStyles = map[string]string{
	"small":  "h-4 w-4",
	"medium": "h-6 w-6",
	"large":  "h-8 w-8",
	"inline": "inline-block h-[1em] w-[1em] align-text-bottom",
	"nav":    "h-5 w-5 text-slate-500 group-hover:text-slate-900",
}

// StyleKeys reports the accepted wrapper style keys.
func StyleKeys() []string {
	return []string{"small", "medium", "large", "inline", "nav"}
}

// HasStyle reports whether key names a wrapper style.
func HasStyle(key string) bool {
	_, ok := wrapperStyles[key]
	return ok
}

// className combines the wrapper style for key with the icon style. Unknown
// keys contribute nothing.
func className(key string) string {
	if wrapper, ok := wrapperStyles[key]; ok {
		return wrapper + " " + iconStyle
	}
	return iconStyle
}
