package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mosaicnetworks/notary/src/client"
	"github.com/mosaicnetworks/notary/src/crypto/keys"
	"github.com/mosaicnetworks/notary/src/envelope"
	"github.com/mosaicnetworks/notary/src/notary"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewSaleCmd returns the command that records a sale
func NewSaleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sale",
		Short:   "Record a house sale",
		Long:    "Record a house sale. Fields not given as flags are prompted for.",
		PreRunE: loadConfig,
		RunE:    runSale,
	}
	AddSaleFlags(cmd)
	return cmd
}

//AddSaleFlags adds flags to the sale command
func AddSaleFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	addKeyFlags(cmd)

	cmd.Flags().StringP("url", "u", _config.Notary.URL, "Base URL of the ledger REST API")
	cmd.Flags().DurationP("wait", "w", _config.Notary.Wait, "How long to wait for the batch to commit, 0 to not wait")
	cmd.Flags().String("family-version", _config.Notary.FamilyVersion, "Payload encoding, 1.0 or 2.0")

	cmd.Flags().String("buyer", "", "Buyer name")
	cmd.Flags().String("seller", "", "Seller name")
	cmd.Flags().String("house", "", "House ID")
}

func runSale(cmd *cobra.Command, args []string) error {
	logger := _config.Notary.Logger()

	// the key is loaded before anything is prompted or sent
	signer, err := keys.LoadSigner(_config.Notary.Keyfile())
	if err != nil {
		return err
	}

	builder, err := envelope.NewBuilder(signer,
		envelope.WithFamilyVersion(_config.Notary.FamilyVersion))
	if err != nil {
		return err
	}

	fact, err := promptFact(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"address": builder.Address(),
		"version": builder.FamilyVersion(),
	}).Debug("Recording sale")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.NewClient(_config.Notary.URL, logger.WithField("component", "client"))

	res, err := c.Sale(ctx, builder, fact, _config.Notary.Wait)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sale transaction response: %s\n", res)

	return nil
}

// promptFact asks for the fields that were not given as flags.
func promptFact(in io.Reader, out io.Writer) (notary.Fact, error) {
	reader := bufio.NewReader(in)

	fields := []struct {
		prompt string
		value  *string
	}{
		{"Buyer name: ", &_config.Buyer},
		{"Seller name: ", &_config.Seller},
		{"House ID: ", &_config.HouseID},
	}

	for _, f := range fields {
		if *f.value != "" {
			continue
		}

		fmt.Fprint(out, f.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return notary.Fact{}, fmt.Errorf("reading %s%v", strings.ToLower(f.prompt), err)
		}
		*f.value = strings.TrimRight(line, "\r\n")
	}

	fact := notary.NewFact(_config.Buyer, _config.Seller, _config.HouseID)
	if err := fact.Validate(); err != nil {
		return notary.Fact{}, err
	}

	return fact, nil
}
