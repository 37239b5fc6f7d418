package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suipilot/suipilot/internal/models"
)

const testAddressBookPackage = "0x4c5e8f7a6b9d0c1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e"

// rpcStub serves canned JSON-RPC results keyed by method and records the
// params of every call it sees.
type rpcStub struct {
	t       *testing.T
	results map[string]string
	calls   map[string][]json.RawMessage
}

func newRPCStub(t *testing.T) (*rpcStub, *httptest.Server) {
	stub := &rpcStub{
		t:       t,
		results: make(map[string]string),
		calls:   make(map[string][]json.RawMessage),
	}
	server := httptest.NewServer(http.HandlerFunc(stub.handle))
	t.Cleanup(server.Close)
	return stub, server
}

func (s *rpcStub) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&req))
	s.calls[req.Method] = append(s.calls[req.Method], req.Params)

	result, ok := s.results[req.Method]
	if !ok {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method %s not stubbed"}}`, req.Method)
		return
	}
	fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, result)
}

func newTestSuiService(t *testing.T, stubbed map[string]string) (SuiService, *rpcStub) {
	stub, server := newRPCStub(t)
	for method, result := range stubbed {
		stub.results[method] = result
	}
	sui := NewSuiService(SuiServiceConfig{
		RPCURL:             server.URL,
		StakingValidator:   "0xva11dator",
		AddressBookPackage: testAddressBookPackage,
	})
	return sui, stub
}

func TestSuiGetBalance(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		sui, stub := newTestSuiService(t, map[string]string{
			"suix_getBalance": `{"coinType":"0x2::sui::SUI","coinObjectCount":3,"totalBalance":"1500000000"}`,
		})

		balance, err := sui.GetBalance(testUserAddress, models.TokenTypeSUI)
		require.NoError(t, err)
		assert.Equal(t, "1500000000", balance.Balance)
		assert.Equal(t, "1.5", balance.Formatted)
		assert.Equal(t, models.TokenTypeSUI, balance.Token)

		require.Len(t, stub.calls["suix_getBalance"], 1)
		var params []string
		require.NoError(t, json.Unmarshal(stub.calls["suix_getBalance"][0], &params))
		assert.Equal(t, []string{testUserAddress, "0x2::sui::SUI"}, params)
	})

	t.Run("USDCDecimals", func(t *testing.T) {
		sui, _ := newTestSuiService(t, map[string]string{
			"suix_getBalance": `{"coinType":"usdc","coinObjectCount":1,"totalBalance":"2500000"}`,
		})

		balance, err := sui.GetBalance(testUserAddress, models.TokenTypeUSDC)
		require.NoError(t, err)
		assert.Equal(t, "2.5", balance.Formatted)
	})

	t.Run("RPCError", func(t *testing.T) {
		sui, _ := newTestSuiService(t, nil)

		_, err := sui.GetBalance(testUserAddress, models.TokenTypeSUI)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get balance")
	})
}

func TestSuiGetStakeInfo(t *testing.T) {
	t.Run("SumsAcrossValidators", func(t *testing.T) {
		sui, _ := newTestSuiService(t, map[string]string{
			"suix_getStakes": `[
				{"validatorAddress":"0xv1","stakes":[
					{"stakedSuiId":"0xs1","principal":"1000000000","status":"Active"},
					{"stakedSuiId":"0xs2","principal":"500000000","status":"Pending"}
				]},
				{"validatorAddress":"0xv2","stakes":[
					{"stakedSuiId":"0xs3","principal":"2500000000","status":"Active"}
				]}
			]`,
		})

		info, err := sui.GetStakeInfo(testUserAddress)
		require.NoError(t, err)
		assert.Equal(t, "4000000000", info.StakedAmount)
		assert.Equal(t, "4", info.Formatted)
		require.Len(t, info.Stakes, 3)
		assert.Equal(t, "0xs1", info.Stakes[0].StakedSuiID)
	})

	t.Run("NoStakes", func(t *testing.T) {
		sui, _ := newTestSuiService(t, map[string]string{"suix_getStakes": `[]`})

		info, err := sui.GetStakeInfo(testUserAddress)
		require.NoError(t, err)
		assert.Equal(t, "0", info.StakedAmount)
		assert.Empty(t, info.Stakes)
	})
}

func TestSuiEstimateGasFee(t *testing.T) {
	sui, _ := newTestSuiService(t, map[string]string{
		"suix_getReferenceGasPrice": `"750"`,
	})

	fee, err := sui.EstimateGasFee()
	require.NoError(t, err)
	assert.Equal(t, uint64(750_000), fee)
}

func TestSuiGetAddressBook(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		sui, stub := newTestSuiService(t, map[string]string{
			"suix_getOwnedObjects": `{"data":[{"data":{"objectId":"0xbook1","type":"` +
				testAddressBookPackage + `::address_book::AddressBook"}}],"hasNextPage":false}`,
		})

		book, err := sui.GetAddressBook(testUserAddress)
		require.NoError(t, err)
		require.NotNil(t, book)
		assert.Equal(t, "0xbook1", book.ObjectID)
		assert.Equal(t, testUserAddress, book.Owner)

		// The query must filter on the package's AddressBook struct type.
		require.Len(t, stub.calls["suix_getOwnedObjects"], 1)
		assert.Contains(t, string(stub.calls["suix_getOwnedObjects"][0]),
			testAddressBookPackage+"::address_book::AddressBook")
	})

	t.Run("AbsentIsNotAnError", func(t *testing.T) {
		sui, _ := newTestSuiService(t, map[string]string{
			"suix_getOwnedObjects": `{"data":[],"hasNextPage":false}`,
		})

		book, err := sui.GetAddressBook(testUserAddress)
		require.NoError(t, err)
		assert.Nil(t, book)
	})
}

func TestSuiBuildCreateAddressBookTx(t *testing.T) {
	sui, _ := newTestSuiService(t, nil)

	call := sui.BuildCreateAddressBookTx(testUserAddress)
	assert.Equal(t, "moveCall", call.TransactionType)
	assert.Equal(t, testAddressBookPackage+"::address_book::create_address_book", call.Target)
	assert.Empty(t, call.Arguments)
}

func TestSuiBuildAddContactTx(t *testing.T) {
	sui, _ := newTestSuiService(t, nil)

	t.Run("Success", func(t *testing.T) {
		call, err := sui.BuildAddContactTx(AddContactTxArgs{
			Sender:        testUserAddress,
			AddressBookID: "0xbook1",
			ContactKey:    "alice",
			EncryptedData: []byte{0x01, 0x02},
			Nonce:         "nonce-1",
			Timestamp:     1700000000,
		})
		require.NoError(t, err)

		assert.Equal(t, testAddressBookPackage+"::address_book::add_contact", call.Target)
		require.Len(t, call.Arguments, 5)
		assert.Equal(t, "0xbook1", call.Arguments[0])
		assert.Equal(t, "alice", call.Arguments[1])
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x01, 0x02}), call.Arguments[2])
	})

	t.Run("MissingFields", func(t *testing.T) {
		_, err := sui.BuildAddContactTx(AddContactTxArgs{Sender: testUserAddress})
		assert.Error(t, err)
	})
}

func TestSuiBuildTransferTransaction(t *testing.T) {
	txBytes := []byte{0x0a, 0x0b, 0x0c}
	txBytesB64 := base64.StdEncoding.EncodeToString(txBytes)

	t.Run("SUIUsesPaySui", func(t *testing.T) {
		sui, stub := newTestSuiService(t, map[string]string{
			"suix_getCoins": `{"data":[
				{"coinObjectId":"0xc1","balance":"6000000000"},
				{"coinObjectId":"0xc2","balance":"6000000000"}
			],"hasNextPage":false}`,
			"unsafe_paySui": `{"txBytes":"` + txBytesB64 + `"}`,
		})

		got, err := sui.BuildTransferTransaction(TransferTransactionArgs{
			Sender:    testUserAddress,
			Recipient: "0xabc",
			Amount:    "10000000000",
			Token:     models.TokenTypeSUI,
		})
		require.NoError(t, err)
		assert.Equal(t, txBytes, got)

		// Both coins are needed: the inputs must cover amount plus gas.
		require.Len(t, stub.calls["unsafe_paySui"], 1)
		var params []json.RawMessage
		require.NoError(t, json.Unmarshal(stub.calls["unsafe_paySui"][0], &params))
		var coins []string
		require.NoError(t, json.Unmarshal(params[1], &coins))
		assert.Equal(t, []string{"0xc1", "0xc2"}, coins)
	})

	t.Run("USDCUsesPay", func(t *testing.T) {
		sui, stub := newTestSuiService(t, map[string]string{
			"suix_getCoins": `{"data":[{"coinObjectId":"0xu1","balance":"5000000"}],"hasNextPage":false}`,
			"unsafe_pay":    `{"txBytes":"` + txBytesB64 + `"}`,
		})

		got, err := sui.BuildTransferTransaction(TransferTransactionArgs{
			Sender:    testUserAddress,
			Recipient: "0xabc",
			Amount:    "2500000",
			Token:     models.TokenTypeUSDC,
		})
		require.NoError(t, err)
		assert.Equal(t, txBytes, got)
		assert.Len(t, stub.calls["unsafe_pay"], 1)
		assert.Empty(t, stub.calls["unsafe_paySui"])
	})

	t.Run("InsufficientCoins", func(t *testing.T) {
		sui, _ := newTestSuiService(t, map[string]string{
			"suix_getCoins": `{"data":[{"coinObjectId":"0xc1","balance":"1000"}],"hasNextPage":false}`,
		})

		_, err := sui.BuildTransferTransaction(TransferTransactionArgs{
			Sender:    testUserAddress,
			Recipient: "0xabc",
			Amount:    "10000000000",
			Token:     models.TokenTypeSUI,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient coin balance")
	})

	t.Run("ValidatesArgs", func(t *testing.T) {
		sui, _ := newTestSuiService(t, nil)

		_, err := sui.BuildTransferTransaction(TransferTransactionArgs{Sender: testUserAddress})
		assert.Error(t, err)
	})
}

func TestSuiBuildStakeTransaction(t *testing.T) {
	txBytesB64 := base64.StdEncoding.EncodeToString([]byte{0x01})

	t.Run("Success", func(t *testing.T) {
		sui, stub := newTestSuiService(t, map[string]string{
			"suix_getCoins":          `{"data":[{"coinObjectId":"0xc1","balance":"60000000000"}],"hasNextPage":false}`,
			"unsafe_requestAddStake": `{"txBytes":"` + txBytesB64 + `"}`,
		})

		_, err := sui.BuildStakeTransaction(StakeTransactionArgs{
			Sender: testUserAddress,
			Amount: "50000000000",
		})
		require.NoError(t, err)

		var params []json.RawMessage
		require.NoError(t, json.Unmarshal(stub.calls["unsafe_requestAddStake"][0], &params))
		var validatorAddr string
		require.NoError(t, json.Unmarshal(params[3], &validatorAddr))
		assert.Equal(t, "0xva11dator", validatorAddr)
	})

	t.Run("NoValidatorConfigured", func(t *testing.T) {
		_, server := newRPCStub(t)
		sui := NewSuiService(SuiServiceConfig{RPCURL: server.URL})

		_, err := sui.BuildStakeTransaction(StakeTransactionArgs{
			Sender: testUserAddress,
			Amount: "50000000000",
		})
		assert.ErrorContains(t, err, "no staking validator configured")
	})
}

func TestSuiBuildUnstakeTransaction(t *testing.T) {
	txBytesB64 := base64.StdEncoding.EncodeToString([]byte{0x02})

	t.Run("PicksCoveringStake", func(t *testing.T) {
		sui, stub := newTestSuiService(t, map[string]string{
			"suix_getStakes": `[{"validatorAddress":"0xv1","stakes":[
				{"stakedSuiId":"0xs1","principal":"1000000000","status":"Active"},
				{"stakedSuiId":"0xs2","principal":"50000000000","status":"Active"}
			]}]`,
			"unsafe_requestWithdrawStake": `{"txBytes":"` + txBytesB64 + `"}`,
		})

		_, err := sui.BuildUnstakeTransaction(UnstakeTransactionArgs{
			Sender: testUserAddress,
			Amount: "20000000000",
		})
		require.NoError(t, err)

		var params []json.RawMessage
		require.NoError(t, json.Unmarshal(stub.calls["unsafe_requestWithdrawStake"][0], &params))
		var stakedSuiID string
		require.NoError(t, json.Unmarshal(params[1], &stakedSuiID))
		assert.Equal(t, "0xs2", stakedSuiID)
	})

	t.Run("NoCoveringStake", func(t *testing.T) {
		sui, _ := newTestSuiService(t, map[string]string{
			"suix_getStakes": `[{"validatorAddress":"0xv1","stakes":[
				{"stakedSuiId":"0xs1","principal":"1000000000","status":"Active"}
			]}]`,
		})

		_, err := sui.BuildUnstakeTransaction(UnstakeTransactionArgs{
			Sender: testUserAddress,
			Amount: "20000000000",
		})
		assert.ErrorContains(t, err, "no staked object covers")
	})
}

func TestSuiExecuteTransactionBlock(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		sui, stub := newTestSuiService(t, map[string]string{
			"sui_executeTransactionBlock": `{
				"digest":"9h2dDigest",
				"effects":{"status":{"status":"success"},"gasUsed":{"computationCost":"750000"}}
			}`,
		})

		result, err := sui.ExecuteTransactionBlock("dHgtYnl0ZXM=", []string{"AAsig"})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "9h2dDigest", result.TransactionDigest)
		assert.Equal(t, "success", result.Effects["status"])

		var params []json.RawMessage
		require.NoError(t, json.Unmarshal(stub.calls["sui_executeTransactionBlock"][0], &params))
		var mode string
		require.NoError(t, json.Unmarshal(params[3], &mode))
		assert.Equal(t, "WaitForLocalExecution", mode)
	})

	t.Run("OnChainFailure", func(t *testing.T) {
		sui, _ := newTestSuiService(t, map[string]string{
			"sui_executeTransactionBlock": `{
				"digest":"9h2dDigest",
				"effects":{"status":{"status":"failure","error":"InsufficientGas"}}
			}`,
		})

		result, err := sui.ExecuteTransactionBlock("dHgtYnl0ZXM=", []string{"AAsig"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "InsufficientGas", result.Error)
	})
}
