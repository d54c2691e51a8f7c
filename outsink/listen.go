// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package outsink

import (
	"errors"
	"math/rand"
	"net"
	"net/netip"

	"github.com/pion/rtp"

	"github.com/livekit/protocol/logger"
)

var ErrListenFailed = errors.New("outsink: failed to listen on udp port")

// ListenRTPPortPair allocates a pair of consecutive UDP ports for RTP/RTCP
// per RFC 3550: RTP on an even port, RTCP on the next (odd) port.
func ListenRTPPortPair(portMin, portMax int, ip netip.Addr) (rtpConn, rtcpConn *net.UDPConn, err error) {
	if portMin == 0 && portMax == 0 {
		portMin = 1024
		portMax = 0xFFFF
	}

	i := portMin
	if i == 0 {
		i = 1
	}
	if i%2 != 0 {
		i++
	}

	j := portMax
	if j == 0 {
		j = 0xFFFF
	}

	if i > j {
		return nil, nil, ErrListenFailed
	}

	portRange := (j - i) / 2
	if portRange <= 0 {
		portRange = 1
	}
	portStart := (rand.Intn(portRange) * 2) + i
	if portStart%2 != 0 {
		portStart++
	}

	portCurrent := portStart
	for {
		rtpConn, err = net.ListenUDP("udp", &net.UDPAddr{IP: ip.AsSlice(), Port: portCurrent})
		if err == nil {
			rtcpConn, err = net.ListenUDP("udp", &net.UDPAddr{IP: ip.AsSlice(), Port: portCurrent + 1})
			if err == nil {
				return rtpConn, rtcpConn, nil
			}
			rtpConn.Close()
		}

		portCurrent += 2
		if portCurrent > j {
			portCurrent = i
			if portCurrent%2 != 0 {
				portCurrent++
			}
		}
		if portCurrent == portStart {
			break
		}
	}
	return nil, nil, ErrListenFailed
}

// udpWriter adapts an unconnected *net.UDPConn (one obtained from ListenUDP,
// as RTPPortPair allocation requires) to RTPWriter by fixing the
// destination address on every send rather than dialing a connected socket.
type udpWriter struct {
	conn   *net.UDPConn
	remote *net.UDPAddr
}

// NewUDPWriter builds an RTPWriter that marshals each packet and sends it
// to remote over conn.
func NewUDPWriter(conn *net.UDPConn, remote *net.UDPAddr) RTPWriter {
	return &udpWriter{conn: conn, remote: remote}
}

func (w *udpWriter) WriteRTP(header *rtp.Header, payload []byte) (int, error) {
	pkt := rtp.Packet{Header: *header, Payload: payload}
	buf, err := pkt.Marshal()
	if err != nil {
		return 0, err
	}
	return w.conn.WriteToUDP(buf, w.remote)
}

// NewRTPSinkUDP allocates an RTP/RTCP UDP port pair in [portMin, portMax] on
// ip and returns an RTPSink that sends to remote over the RTP port. The
// RTCP port is allocated (per RFC 3550) but otherwise unused by plain RTP:
// SecureRTPSink is the transport that puts it to work for Sender Reports.
func NewRTPSinkUDP(log logger.Logger, portMin, portMax int, ip netip.Addr, remote *net.UDPAddr, ssrc uint32, payloadType byte, samplesPerBlock uint32) (*RTPSink, error) {
	rtpConn, rtcpConn, err := ListenRTPPortPair(portMin, portMax, ip)
	if err != nil {
		return nil, err
	}
	// Plain RTP has no control channel of its own; the paired odd port is
	// only meaningful once an RTCP session rides alongside it, which is
	// SecureRTPSink's job.
	rtcpConn.Close()
	return NewRTPSink(log, NewUDPWriter(rtpConn, remote), ssrc, payloadType, samplesPerBlock), nil
}
