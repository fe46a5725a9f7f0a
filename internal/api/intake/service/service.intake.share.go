package intakesvc

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	placeholderRe = regexp.MustCompile(`FOTO(\d+)`)
	whatsappRe    = regexp.MustCompile(`^55\d{11}$`)
)

// ResolvePlaceholders troca cada FOTO<n> por urls[n-1]; FOTO1 não afeta FOTO10 e tokens sem URL ficam
func ResolvePlaceholders(text string, urls []string) string {
	if len(urls) == 0 {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(tok string) string {
		n, err := strconv.Atoi(tok[len("FOTO"):])
		if err != nil || n < 1 || n > len(urls) || urls[n-1] == "" {
			return tok
		}
		return urls[n-1]
	})
}

// ShareLink é o link de saída: destino http usado como está, senão wa.me com o texto; sem destino não há link
func ShareLink(destino, text string) string {
	destino = strings.TrimSpace(destino)
	switch {
	case destino == "":
		return ""
	case strings.HasPrefix(destino, "http"):
		return destino
	}
	return "https://wa.me/" + destino + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// ValidWhatsapp confere o formato 55 + DDD + número (13 dígitos)
func ValidWhatsapp(destino string) bool {
	return whatsappRe.MatchString(strings.TrimSpace(destino))
}
