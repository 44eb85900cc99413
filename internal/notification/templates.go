package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"dzgamezone-be/internal/order"
	"dzgamezone-be/internal/shipping"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ShopName = "DZ GAME ZONE"

var printer = message.NewPrinter(language.French)

// FormatAmount renders a dinar amount the way customers read it, e.g. "34 000 DA".
func FormatAmount(n int64) string {
	s := printer.Sprintf("%d", n)
	s = strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(s)
	return s + " DA"
}

func deliveryLabel(d shipping.DeliveryType) string {
	switch d {
	case shipping.DeliveryDomicile:
		return "à domicile"
	case shipping.DeliveryAgence:
		return "en agence"
	default:
		return string(d)
	}
}

var funcs = template.FuncMap{
	"amount":   FormatAmount,
	"delivery": deliveryLabel,
}

type orderView struct {
	Shop        string
	Reference   string
	ProductName string
	VariantName string
	Quantity    int64
	UnitPrice   int64
	Subtotal    int64
	ShippingFee int64
	Total       int64
	Delivery    shipping.DeliveryType
	Wilaya      string
	Address     string
	Note        string
	Phone       string
	Headline    string
}

func viewOf(o *order.Order) orderView {
	v := orderView{
		Shop:        ShopName,
		Reference:   o.Reference,
		VariantName: o.VariantName,
		Quantity:    o.Quantity,
		UnitPrice:   o.ProductPrice,
		Subtotal:    o.ProductPrice * o.Quantity,
		ShippingFee: o.ShippingFee,
		Total:       o.TotalPrice,
		Delivery:    o.DeliveryType,
		Wilaya:      o.Wilaya,
		Address:     o.Address,
		Note:        o.Note,
		Phone:       o.CustomerPhone,
	}
	if o.Product != nil {
		v.ProductName = o.Product.Name
	}
	return v
}

const orderSummary = `{{define "summary"}}
<p>Commande : <strong>{{.Reference}}</strong></p>
<p>Produit : {{.ProductName}}{{if .VariantName}} ({{.VariantName}}){{end}}</p>
<p>Quantité : {{.Quantity}}</p>
<p>Prix unitaire : {{amount .UnitPrice}}</p>
<p>Sous-total : {{amount .Subtotal}}</p>
<p>Livraison ({{delivery .Delivery}}) vers {{.Wilaya}} : {{if eq .ShippingFee 0}}GRATUITE{{else}}{{amount .ShippingFee}}{{end}}</p>
<p><strong>Total à payer à la livraison : {{amount .Total}}</strong></p>
<p>Adresse : {{.Address}}</p>
{{end}}`

var (
	placedTmpl = template.Must(template.New("placed").Funcs(funcs).Parse(orderSummary + `
<h2>Merci pour votre commande !</h2>
{{template "summary" .}}
<p>Note : {{if .Note}}{{.Note}}{{else}}Aucune{{end}}</p>
<p>Nous vous contacterons bientôt sur {{.Phone}} pour confirmer.</p>
<p>{{.Shop}} - Level up !</p>
`))

	statusTmpl = template.Must(template.New("status").Funcs(funcs).Parse(orderSummary + `
<h2>{{.Headline}}</h2>
{{template "summary" .}}
<p>Pour toute question, contactez-nous en rappelant votre numéro de commande.</p>
<p>{{.Shop}} - Level up !</p>
`))
)

func render(t *template.Template, v orderView) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// PlacedMessage is the summary sent right after an order is stored.
func PlacedMessage(o *order.Order) (Message, error) {
	html, err := render(placedTmpl, viewOf(o))
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{o.CustomerEmail},
		Subject: "Confirmation de commande - " + ShopName,
		HTML:    html,
	}, nil
}

// StatusMessage announces that the order was confirmed or shipped.
func StatusMessage(o *order.Order) (Message, error) {
	v := viewOf(o)
	var subject string
	switch o.Status {
	case order.StatusConfirmed:
		subject = "Commande confirmée - " + ShopName
		v.Headline = "Votre commande est confirmée"
	case order.StatusShipped:
		subject = "Commande expédiée - " + ShopName
		v.Headline = "Votre commande est en route"
	default:
		return Message{}, fmt.Errorf("no email for status %q", o.Status)
	}

	html, err := render(statusTmpl, v)
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{o.CustomerEmail}, Subject: subject, HTML: html}, nil
}
