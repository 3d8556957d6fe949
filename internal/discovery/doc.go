// Package discovery advertises and locates pktdecode services over mDNS.
//
// A running `pktdecode serve` registers itself under the "_pktdecode._tcp"
// service type with these TXT records:
//
//	path=/decode       WebSocket endpoint path
//	version=v0.3.0     build version of the serving binary
//	tls=true           present only when the service speaks wss://
//
// `pktdecode scan` browses for that service type and turns each answer into a
// Service, whose URL method yields the address `pktdecode remote` dials.
//
// # Usage Example
//
//	adv, err := discovery.Advertise("bench-1", 8716, "v0.3.0", false)
//	if err != nil {
//	    return err
//	}
//	defer adv.Shutdown()
//
//	services, err := discovery.Scan(3 * time.Second)
//	for _, svc := range services {
//	    fmt.Println(svc, svc.URL())
//	}
//
// mDNS relies on multicast on the local link; hosts with multicast filtered
// will neither see nor be seen.
package discovery
