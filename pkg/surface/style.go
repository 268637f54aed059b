package surface

import (
	"strings"

	"github.com/beevik/etree"
)

// setStyleProp sets (value != "") or removes (value == "") a single CSS
// property in an element's inline style attribute.
func setStyleProp(el *etree.Element, prop, value string) {
	var kept []string
	for _, decl := range strings.Split(el.SelectAttrValue("style", ""), ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(name) == prop {
			continue
		}
		kept = append(kept, decl)
	}
	if value != "" {
		kept = append(kept, prop+":"+value)
	}
	if len(kept) == 0 {
		el.RemoveAttr("style")
		return
	}
	el.CreateAttr("style", strings.Join(kept, ";"))
}

func styleProp(el *etree.Element, prop string) string {
	for _, decl := range strings.Split(el.SelectAttrValue("style", ""), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) == prop {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func setHidden(el *etree.Element, hidden bool) {
	if hidden {
		setStyleProp(el, "display", "none")
	} else {
		setStyleProp(el, "display", "")
	}
}

func isHidden(el *etree.Element) bool {
	return styleProp(el, "display") == "none"
}

func hasClass(el *etree.Element, class string) bool {
	for _, c := range strings.Fields(el.SelectAttrValue("class", "")) {
		if c == class {
			return true
		}
	}
	return false
}
