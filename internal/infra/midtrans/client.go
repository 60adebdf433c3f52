package midtrans

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"os"

	"storefront-service/internal/domain"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// ChargeToken is the result of creating a Snap transaction at the gateway.
type ChargeToken struct {
	Token       string
	RedirectURL string
}

type SnapClient struct {
	client *snap.Client
}

func NewSnapClientFromEnv() *SnapClient {
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_IS_PRODUCTION") == "true" {
		env = midtrans.Production
	}

	var client snap.Client
	client.New(os.Getenv("MIDTRANS_SERVER_KEY"), env)

	return &SnapClient{client: &client}
}

// CreateTransaction asks the gateway for a Snap token for the given order.
// This is a network call and must never run inside a storage transaction.
func (c *SnapClient) CreateTransaction(ctx context.Context, order *domain.Order) (*ChargeToken, error) {
	_ = ctx // midtrans-go does not take a context

	items := make([]midtrans.ItemDetails, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.VariantID
		if item.Variant != nil {
			name = item.Variant.SKU
			if item.Variant.Product != nil {
				name = item.Variant.Product.Name
			}
		}
		items = append(items, midtrans.ItemDetails{
			ID:    item.VariantID,
			Price: item.Price,
			Qty:   int32(item.Quantity),
			Name:  name,
		})
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.ID,
			GrossAmt: order.Total,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: order.ShippingAddress.FullName,
			Phone: order.ShippingAddress.Phone,
			ShipAddr: &midtrans.CustomerAddress{
				FName:    order.ShippingAddress.FullName,
				Phone:    order.ShippingAddress.Phone,
				Address:  order.ShippingAddress.FullAddress,
				City:     order.ShippingAddress.City,
				Postcode: order.ShippingAddress.PostalCode,
			},
		},
		Items: &items,
	}

	resp, snapErr := c.client.CreateTransaction(req)
	if snapErr != nil {
		return nil, snapErr
	}

	return &ChargeToken{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// VerifySignature checks a webhook notification's signature_key:
// sha512(order_id + status_code + gross_amount + server_key).
func VerifySignature(orderID, statusCode, grossAmount, signature, serverKey string) bool {
	raw := orderID + statusCode + grossAmount + serverKey
	hash := sha512.Sum512([]byte(raw))
	expected := hex.EncodeToString(hash[:])

	return expected == signature
}
