package models

import "fmt"

// DeployedContract is a contract known at an address after a confirmed
// deployment or an attach. It is never mutated once created.
type DeployedContract struct {
	Name            string `json:"name"`
	Contract        string `json:"contract"`
	Address         string `json:"address"`
	ConstructorArgs []any  `json:"constructorArgs"`
	TxHash          string `json:"txHash,omitempty"`
	Attached        bool   `json:"attached"`
}

// LinkResult records a confirmed configuration transaction
type LinkResult struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Method string `json:"method"`
	TxHash string `json:"txHash"`
}

// AddressRecord is one line of the address registry
type AddressRecord struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	ExplorerLink string `json:"explorerLink"`
}

// ExplorerAddressURL builds the explorer link for an address. The base is
// joined as given.
func ExplorerAddressURL(explorerBaseURL, address string) string {
	return fmt.Sprintf("%s/address/%s", explorerBaseURL, address)
}

// DeploymentResult is everything a manifest run produced, in manifest order.
// On failure it holds whatever completed before the failing step.
type DeploymentResult struct {
	Manifest      string                `json:"manifest"`
	Contracts     []*DeployedContract   `json:"contracts"`
	Links         []*LinkResult         `json:"links"`
	Records       []AddressRecord       `json:"records"`
	Verifications []*VerificationReport `json:"verifications"`
}

// Contract returns the deployed contract produced by the named step
func (r *DeploymentResult) Contract(name string) *DeployedContract {
	for _, c := range r.Contracts {
		if c.Name == name {
			return c
		}
	}
	return nil
}
